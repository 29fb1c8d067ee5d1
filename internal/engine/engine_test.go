package engine

import (
	"context"
	"errors"
	"testing"

	"cellplan/internal/model"
	"cellplan/internal/problem"
)

func testProblem(t *testing.T, clients []model.Client) *problem.Problem {
	t.Helper()
	p, err := problem.New(problem.Spec{
		NumAntennas:    1,
		BitsPerCoord:   2,
		MapWidth:       3,
		MapHeight:      3,
		CoverageRadius: 5,
	}, clients)
	if err != nil {
		t.Fatalf("new problem: %v", err)
	}
	return p
}

func validConfig() Config {
	return Config{
		PopulationSize:         10,
		MaxGenerations:         20,
		ElitismCount:           2,
		CrossoverRate:          0.5,
		MutationRate:           0.05,
		MaxStagnantGenerations: 5,
		Seed:                   42,
	}
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	prob := testProblem(t, []model.Client{{ID: "c1", X: 1, Y: 1}})

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero population", func(c *Config) { c.PopulationSize = 0 }},
		{"negative population", func(c *Config) { c.PopulationSize = -3 }},
		{"zero generations", func(c *Config) { c.MaxGenerations = 0 }},
		{"negative elitism", func(c *Config) { c.ElitismCount = -1 }},
		{"elitism above population", func(c *Config) { c.ElitismCount = 11 }},
		{"crossover rate above one", func(c *Config) { c.CrossoverRate = 1.1 }},
		{"negative crossover rate", func(c *Config) { c.CrossoverRate = -0.1 }},
		{"mutation rate above one", func(c *Config) { c.MutationRate = 2 }},
		{"negative mutation rate", func(c *Config) { c.MutationRate = -0.5 }},
		{"negative stagnation limit", func(c *Config) { c.MaxStagnantGenerations = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if _, err := New(cfg, prob); !errors.Is(err, model.ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestNewRejectsEmptyChromosome(t *testing.T) {
	prob, err := problem.New(problem.Spec{
		NumAntennas:    0,
		BitsPerCoord:   2,
		MapWidth:       3,
		MapHeight:      3,
		CoverageRadius: 5,
	}, nil)
	if err != nil {
		t.Fatalf("new problem: %v", err)
	}
	if _, err := New(validConfig(), prob); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration for empty chromosome, got %v", err)
	}
}

func TestPopulationSizeInvariant(t *testing.T) {
	prob := testProblem(t, []model.Client{{ID: "c1", X: 1, Y: 1}})

	for _, size := range []int{1, 3, 10, 11} {
		cfg := validConfig()
		cfg.PopulationSize = size
		cfg.ElitismCount = min(2, size)
		eng, err := New(cfg, prob)
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}

		population := eng.initialPopulation()
		if len(population) != size {
			t.Fatalf("initial population = %d, want %d", len(population), size)
		}
		if err := eng.evaluate(population); err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		for i := 0; i < 5; i++ {
			population, err = eng.breed(population)
			if err != nil {
				t.Fatalf("breed: %v", err)
			}
			if len(population) != size {
				t.Fatalf("population after breed = %d, want %d", len(population), size)
			}
			if err := eng.evaluate(population); err != nil {
				t.Fatalf("evaluate: %v", err)
			}
		}
	}
}

func TestElitismCarriesTopIndividualsUnchanged(t *testing.T) {
	prob := testProblem(t, []model.Client{{ID: "c1", X: 1, Y: 1}})
	cfg := validConfig()
	cfg.PopulationSize = 6
	cfg.ElitismCount = 3
	cfg.MutationRate = 1 // children get scrambled, elites must not
	eng, err := New(cfg, prob)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	population := []model.Individual{
		{Genes: []byte{0, 0, 0, 0}, Fitness: 2, Valid: true},
		{Genes: []byte{0, 0, 0, 1}, Fitness: 5, Valid: true},
		{Genes: []byte{0, 0, 1, 0}, Fitness: 5, Valid: true},
		{Genes: []byte{0, 0, 1, 1}, Fitness: 1, Valid: true},
		{Genes: []byte{0, 1, 0, 0}, Fitness: 5, Valid: true},
		{Genes: []byte{0, 1, 0, 1}, Fitness: 0, Valid: true},
	}

	next, err := eng.breed(population)
	if err != nil {
		t.Fatalf("breed: %v", err)
	}

	// Stable sort on equal fitness keeps pre-sort order, so the cut
	// falls on the first three fitness-5 individuals by position.
	wantGenes := [][]byte{{0, 0, 0, 1}, {0, 0, 1, 0}, {0, 1, 0, 0}}
	for i, want := range wantGenes {
		got := next[i].Genes
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("elite %d genes = %v, want %v", i, got, want)
			}
		}
	}
}

func TestElitesAreDeepCopies(t *testing.T) {
	prob := testProblem(t, []model.Client{{ID: "c1", X: 1, Y: 1}})
	cfg := validConfig()
	cfg.PopulationSize = 4
	cfg.ElitismCount = 1
	eng, err := New(cfg, prob)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	population := []model.Individual{
		{Genes: []byte{1, 1, 1, 1}, Fitness: 9, Valid: true},
		{Genes: []byte{0, 0, 0, 0}, Fitness: 1, Valid: true},
		{Genes: []byte{0, 0, 0, 1}, Fitness: 1, Valid: true},
		{Genes: []byte{0, 0, 1, 0}, Fitness: 1, Valid: true},
	}

	next, err := eng.breed(population)
	if err != nil {
		t.Fatalf("breed: %v", err)
	}

	next[0].Genes[0] = 0
	if population[0].Genes[0] != 1 {
		t.Fatal("mutating the elite clone changed the source individual")
	}
}

func TestRunNeverExceedsMaxGenerations(t *testing.T) {
	prob := testProblem(t, []model.Client{{ID: "c1", X: 1, Y: 1}})
	cfg := validConfig()
	cfg.MaxGenerations = 7
	cfg.MaxStagnantGenerations = 0 // early stopping disabled
	eng, err := New(cfg, prob)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	result, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.GenerationsRun != 7 {
		t.Fatalf("generations run = %d, want 7 with early stopping disabled", result.GenerationsRun)
	}
	if len(result.BestByGeneration) != 7 {
		t.Fatalf("best history length = %d, want 7", len(result.BestByGeneration))
	}
}

func TestRunStopsOnStagnation(t *testing.T) {
	// Every reachable point covers the single client, so fitness is 1
	// from generation zero and never improves.
	prob := testProblem(t, []model.Client{{ID: "c1", X: 1, Y: 1}})
	cfg := validConfig()
	cfg.MaxGenerations = 1000
	cfg.MaxStagnantGenerations = 4
	eng, err := New(cfg, prob)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	result, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Best.Fitness != 1 {
		t.Fatalf("best fitness = %d, want 1", result.Best.Fitness)
	}
	if result.GenerationsRun != 4 {
		t.Fatalf("generations run = %d, want 4 (stagnation stop)", result.GenerationsRun)
	}
}

func TestRunIsDeterministicUnderFixedSeed(t *testing.T) {
	clients := []model.Client{
		{ID: "c1", X: 1, Y: 1},
		{ID: "c2", X: 3, Y: 0},
		{ID: "c3", X: 0, Y: 3},
	}

	runOnce := func(workers int) Result {
		p, err := problem.New(problem.Spec{
			NumAntennas:    2,
			BitsPerCoord:   2,
			MapWidth:       3,
			MapHeight:      3,
			CoverageRadius: 1.5,
		}, clients)
		if err != nil {
			t.Fatalf("new problem: %v", err)
		}
		cfg := validConfig()
		cfg.Seed = 7
		cfg.Workers = workers
		eng, err := New(cfg, p)
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}
		result, err := eng.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	first := runOnce(1)
	// Parallel fitness evaluation must not change run behavior: workers
	// never touch the random source.
	second := runOnce(4)

	if first.GenerationsRun != second.GenerationsRun {
		t.Fatalf("generations differ: %d vs %d", first.GenerationsRun, second.GenerationsRun)
	}
	if first.Best.Fitness != second.Best.Fitness {
		t.Fatalf("best fitness differs: %d vs %d", first.Best.Fitness, second.Best.Fitness)
	}
	if first.Best.Bitstring() != second.Best.Bitstring() {
		t.Fatalf("best genes differ: %s vs %s", first.Best.Bitstring(), second.Best.Bitstring())
	}
	for i := range first.BestByGeneration {
		if first.BestByGeneration[i] != second.BestByGeneration[i] {
			t.Fatalf("history differs at generation %d", i+1)
		}
	}
}

func TestRunReportsProgress(t *testing.T) {
	prob := testProblem(t, []model.Client{{ID: "c1", X: 1, Y: 1}})
	cfg := validConfig()
	cfg.MaxGenerations = 5
	cfg.MaxStagnantGenerations = 0

	var generations []int
	cfg.Progress = func(generation, bestFitness, stagnant int) {
		generations = append(generations, generation)
		if bestFitness != 1 {
			t.Errorf("generation %d best fitness = %d, want 1", generation, bestFitness)
		}
	}

	eng, err := New(cfg, prob)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := eng.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// Initial population plus five generations.
	if len(generations) != 6 {
		t.Fatalf("progress callbacks = %d, want 6", len(generations))
	}
	for i, generation := range generations {
		if generation != i {
			t.Fatalf("callback %d reported generation %d", i, generation)
		}
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	prob := testProblem(t, []model.Client{{ID: "c1", X: 1, Y: 1}})
	eng, err := New(validConfig(), prob)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBestIndexPrefersFirstOccurrence(t *testing.T) {
	population := []model.Individual{
		{Fitness: 3},
		{Fitness: 7},
		{Fitness: 7},
		{Fitness: 5},
	}
	if got := bestIndex(population); got != 1 {
		t.Fatalf("best index = %d, want 1 (first of the tied maxima)", got)
	}
}
