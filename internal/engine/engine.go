// Package engine drives the generational loop of the binary genetic
// algorithm: initialization, elitism, selection, crossover, mutation and
// stagnation-based termination.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"cellplan/internal/model"
	"cellplan/internal/problem"
)

// ProgressFunc observes one finished generation: generation index, best
// fitness found so far and the current stagnation counter. The engine does
// not depend on any particular output sink.
type ProgressFunc func(generation, bestFitness, stagnant int)

type Config struct {
	PopulationSize         int
	MaxGenerations         int
	ElitismCount           int
	CrossoverRate          float64
	MutationRate           float64
	MaxStagnantGenerations int // 0 disables early stopping
	Seed                   int64
	Workers                int
	Selector               Selector
	Progress               ProgressFunc
}

// Result is the outcome of one run. Best is never aliased to a population
// member.
type Result struct {
	Best             model.Individual
	GenerationsRun   int
	BestByGeneration []int
	Stats            []model.GenerationStats
}

// Engine owns the population between generations and a single sequential
// random source. One Engine drives one run.
type Engine struct {
	cfg     Config
	problem *problem.Problem
	rng     *rand.Rand
}

// New validates the configuration and builds an engine. Malformed
// configuration fails here, before any generation runs; nothing is
// silently clamped.
func New(cfg Config, prob *problem.Problem) (*Engine, error) {
	if prob == nil {
		return nil, fmt.Errorf("%w: problem is required", model.ErrInvalidConfiguration)
	}
	if prob.ChromosomeLength() < 1 {
		return nil, fmt.Errorf("%w: chromosome length must be >= 1, got %d", model.ErrInvalidConfiguration, prob.ChromosomeLength())
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("%w: population size must be > 0, got %d", model.ErrInvalidConfiguration, cfg.PopulationSize)
	}
	if cfg.MaxGenerations <= 0 {
		return nil, fmt.Errorf("%w: max generations must be > 0, got %d", model.ErrInvalidConfiguration, cfg.MaxGenerations)
	}
	if cfg.ElitismCount < 0 || cfg.ElitismCount > cfg.PopulationSize {
		return nil, fmt.Errorf("%w: elitism count must be in [0, population size], got %d", model.ErrInvalidConfiguration, cfg.ElitismCount)
	}
	if cfg.CrossoverRate < 0 || cfg.CrossoverRate > 1 {
		return nil, fmt.Errorf("%w: crossover rate must be in [0, 1], got %g", model.ErrInvalidConfiguration, cfg.CrossoverRate)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("%w: mutation rate must be in [0, 1], got %g", model.ErrInvalidConfiguration, cfg.MutationRate)
	}
	if cfg.MaxStagnantGenerations < 0 {
		return nil, fmt.Errorf("%w: max stagnant generations must be >= 0, got %d", model.ErrInvalidConfiguration, cfg.MaxStagnantGenerations)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Selector == nil {
		cfg.Selector = RouletteSelector{}
	}

	return &Engine{
		cfg:     cfg,
		problem: prob,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run executes the generational loop and returns the best individual ever
// seen, which may not be a member of the final population. The context is
// checked once per generation boundary; a generation is never interrupted
// midway, so an individual's fitness always corresponds to its final genes.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	population := e.initialPopulation()
	if err := e.evaluate(population); err != nil {
		return Result{}, err
	}

	best := population[bestIndex(population)].Clone()
	stagnant := 0

	bestHistory := make([]int, 0, e.cfg.MaxGenerations)
	stats := make([]model.GenerationStats, 0, e.cfg.MaxGenerations+1)
	stats = append(stats, summarize(population, 0, stagnant))
	e.reportProgress(0, best.Fitness, stagnant)

	generationsRun := 0
	for gen := 1; gen <= e.cfg.MaxGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		generationsRun = gen

		var err error
		population, err = e.breed(population)
		if err != nil {
			return Result{}, err
		}
		if err := e.evaluate(population); err != nil {
			return Result{}, err
		}

		current := population[bestIndex(population)]
		if current.Fitness > best.Fitness {
			best = current.Clone()
			stagnant = 0
		} else {
			stagnant++
		}

		bestHistory = append(bestHistory, best.Fitness)
		stats = append(stats, summarize(population, gen, stagnant))
		e.reportProgress(gen, best.Fitness, stagnant)

		if e.cfg.MaxStagnantGenerations > 0 && stagnant >= e.cfg.MaxStagnantGenerations {
			break
		}
	}

	return Result{
		Best:             best,
		GenerationsRun:   generationsRun,
		BestByGeneration: bestHistory,
		Stats:            stats,
	}, nil
}

func (e *Engine) initialPopulation() []model.Individual {
	length := e.problem.ChromosomeLength()
	population := make([]model.Individual, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.PopulationSize; i++ {
		genes := make([]byte, length)
		for j := range genes {
			genes[j] = byte(e.rng.Intn(2))
		}
		population = append(population, model.NewIndividual(genes))
	}
	return population
}

// breed builds the next generation: elite clones first, then children from
// roulette-selected parents via two-point crossover and bit-flip mutation.
func (e *Engine) breed(population []model.Individual) ([]model.Individual, error) {
	// Rank a copy so the pre-sort population order survives; the stable
	// sort decides which of several equal-fitness individuals make the
	// elite cut.
	ranked := make([]model.Individual, len(population))
	copy(ranked, population)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})

	next := make([]model.Individual, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.ElitismCount; i++ {
		next = append(next, ranked[i].Clone())
	}

	for len(next) < e.cfg.PopulationSize {
		parentA, err := e.cfg.Selector.PickParent(e.rng, population)
		if err != nil {
			return nil, err
		}
		parentB, err := e.cfg.Selector.PickParent(e.rng, population)
		if err != nil {
			return nil, err
		}

		var childA, childB []byte
		if e.rng.Float64() < e.cfg.CrossoverRate {
			childA, childB = twoPointCrossover(e.rng, parentA.Genes, parentB.Genes)
		} else {
			childA = cloneGenes(parentA.Genes)
			childB = cloneGenes(parentB.Genes)
		}

		mutate(e.rng, childA, e.cfg.MutationRate)
		mutate(e.rng, childB, e.cfg.MutationRate)

		next = append(next, model.NewIndividual(childA))
		if len(next) < e.cfg.PopulationSize {
			next = append(next, model.NewIndividual(childB))
		}
	}

	return next[:e.cfg.PopulationSize], nil
}

// evaluate computes fitness for every individual whose cached score is
// stale. Evaluation is read-only on the problem and independent per
// individual, so it fans out across workers; results are written back by
// index and population order is unchanged.
func (e *Engine) evaluate(population []model.Individual) error {
	pending := make([]int, 0, len(population))
	for i := range population {
		if !population[i].Valid {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	workers := e.cfg.Workers
	if workers > len(pending) {
		workers = len(pending)
	}
	if workers <= 1 {
		for _, idx := range pending {
			fitness, err := e.problem.Fitness(population[idx].Genes)
			if err != nil {
				return err
			}
			population[idx].Fitness = fitness
			population[idx].Valid = true
		}
		return nil
	}

	type result struct {
		idx     int
		fitness int
		err     error
	}

	jobs := make(chan int)
	results := make(chan result, len(pending))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				fitness, err := e.problem.Fitness(population[idx].Genes)
				results <- result{idx: idx, fitness: fitness, err: err}
			}
		}()
	}

	for _, idx := range pending {
		jobs <- idx
	}
	close(jobs)

	wg.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			return res.err
		}
		population[res.idx].Fitness = res.fitness
		population[res.idx].Valid = true
	}
	return nil
}

func (e *Engine) reportProgress(generation, bestFitness, stagnant int) {
	if e.cfg.Progress != nil {
		e.cfg.Progress(generation, bestFitness, stagnant)
	}
}

// bestIndex returns the first occurrence of the maximum fitness; ties break
// by population order, never re-randomized.
func bestIndex(population []model.Individual) int {
	best := 0
	for i := 1; i < len(population); i++ {
		if population[i].Fitness > population[best].Fitness {
			best = i
		}
	}
	return best
}

func summarize(population []model.Individual, generation, stagnant int) model.GenerationStats {
	total := 0
	best := population[0].Fitness
	for _, ind := range population {
		total += ind.Fitness
		if ind.Fitness > best {
			best = ind.Fitness
		}
	}
	return model.GenerationStats{
		Generation:  generation,
		BestFitness: best,
		MeanFitness: float64(total) / float64(len(population)),
		Stagnant:    stagnant,
	}
}
