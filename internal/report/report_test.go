package report

import (
	"strings"
	"testing"

	"cellplan/internal/model"
)

func sampleParams() Params {
	return Params{
		ClientCount: 120,
		Problem: model.ProblemSpec{
			NumAntennas:    2,
			BitsPerCoord:   10,
			MapWidth:       1000,
			MapHeight:      1000,
			CoverageRadius: 100,
		},
		Engine: model.EngineSpec{
			PopulationSize:         100,
			MaxGenerations:         1000,
			ElitismCount:           10,
			CrossoverRate:          0.5,
			MutationRate:           0.05,
			MaxStagnantGenerations: 50,
			Seed:                   42,
		},
		Best: model.Individual{
			Genes:   []byte{1, 0, 1, 1, 0, 1, 0, 0},
			Fitness: 87,
			Valid:   true,
		},
		Antennas:       []model.Coordinate{{X: 120, Y: 740}, {X: 512, Y: 9}},
		GenerationsRun: 231,
	}
}

func TestBuildContainsParseableAntennaLines(t *testing.T) {
	text := Build(sampleParams())

	for _, want := range []string{
		"  Antenna 01: (120, 740)",
		"  Antenna 02: (512, 9)",
		"Best coverage found: 87 clients",
		"Generations run: 231",
		"10110100",
		"POPULATION_SIZE: 100",
		"COVERAGE_RADIUS: 100",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
}

func TestParseAntennasRoundTrip(t *testing.T) {
	params := sampleParams()
	coords, err := ParseAntennas(Build(params))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(coords) != len(params.Antennas) {
		t.Fatalf("parsed %d antennas, want %d", len(coords), len(params.Antennas))
	}
	for i := range coords {
		if coords[i] != params.Antennas[i] {
			t.Fatalf("antenna %d = %+v, want %+v", i, coords[i], params.Antennas[i])
		}
	}
}

func TestParseAntennasIgnoresUnrelatedLines(t *testing.T) {
	text := "noise\nAntenna 3: (4, 5)\nAntennaless line (1, 2)\n"
	coords, err := ParseAntennas(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(coords) != 1 || coords[0].X != 4 || coords[0].Y != 5 {
		t.Fatalf("coords = %+v, want one antenna at (4, 5)", coords)
	}
}

func TestParseAntennasFailsWithNoMatches(t *testing.T) {
	if _, err := ParseAntennas("no coordinates here"); err == nil {
		t.Fatal("expected error when no antenna lines are present")
	}
}
