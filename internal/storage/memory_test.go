package storage

import (
	"context"
	"testing"

	"cellplan/internal/model"
)

func sampleRun(id, createdAt string) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion,
		},
		ID:             id,
		CreatedAtUTC:   createdAt,
		ClientCount:    12,
		BestFitness:    7,
		BestGenes:      "0110",
		Antennas:       []model.Coordinate{{X: 1, Y: 2}},
		GenerationsRun: 40,
	}
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	run := sampleRun("run-1", "2026-01-02T03:04:05Z")
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("run not found")
	}
	if got.BestFitness != 7 || got.BestGenes != "0110" || len(got.Antennas) != 1 {
		t.Fatalf("run = %+v", got)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing run: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreListRunsOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, run := range []model.RunRecord{
		sampleRun("old", "2026-01-01T00:00:00Z"),
		sampleRun("new", "2026-02-01T00:00:00Z"),
		sampleRun("mid", "2026-01-15T00:00:00Z"),
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	wantOrder := []string{"new", "mid", "old"}
	if len(runs) != len(wantOrder) {
		t.Fatalf("listed %d runs, want %d", len(runs), len(wantOrder))
	}
	for i, want := range wantOrder {
		if runs[i].ID != want {
			t.Fatalf("run %d = %s, want %s", i, runs[i].ID, want)
		}
	}

	limited, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("listed %d runs with limit 2", len(limited))
	}
}

func TestMemoryStoreHistories(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	history := []int{1, 2, 2, 3}
	if err := store.SaveFitnessHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	got, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get history: ok=%v err=%v", ok, err)
	}
	got[0] = 99
	again, _, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history again: %v", err)
	}
	if again[0] != 1 {
		t.Fatal("store handed out its internal history slice")
	}

	stats := []model.GenerationStats{{Generation: 1, BestFitness: 3, MeanFitness: 1.5, Stagnant: 0}}
	if err := store.SaveGenerationStats(ctx, "run-1", stats); err != nil {
		t.Fatalf("save stats: %v", err)
	}
	gotStats, ok, err := store.GetGenerationStats(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get stats: ok=%v err=%v", ok, err)
	}
	if gotStats[0].BestFitness != 3 {
		t.Fatalf("stats = %+v", gotStats)
	}

	if _, ok, _ := store.GetFitnessHistory(ctx, "missing"); ok {
		t.Fatal("missing history reported as found")
	}
}
