package engine

import (
	"fmt"
	"math/rand"

	"cellplan/internal/model"
)

// Selector chooses a parent from the current population for replication.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, population []model.Individual) (model.Individual, error)
}

// RouletteSelector implements fitness-proportionate selection. Each
// individual is drawn with probability proportional to max(fitness, 0).
// When every weight is zero the draw degenerates to a uniform choice over
// the population; the two branches are explicit so a zero total weight is
// never a division hazard.
type RouletteSelector struct{}

func (RouletteSelector) Name() string {
	return "roulette"
}

func (RouletteSelector) PickParent(rng *rand.Rand, population []model.Individual) (model.Individual, error) {
	if rng == nil {
		return model.Individual{}, fmt.Errorf("random source is required")
	}
	if len(population) == 0 {
		return model.Individual{}, fmt.Errorf("population is empty")
	}

	total := 0
	for _, ind := range population {
		total += max(ind.Fitness, 0)
	}
	if total == 0 {
		return population[rng.Intn(len(population))], nil
	}

	pick := rng.Intn(total)
	cumulative := 0
	for _, ind := range population {
		cumulative += max(ind.Fitness, 0)
		if pick < cumulative {
			return ind, nil
		}
	}
	// Unreachable: cumulative ends at total and pick < total.
	return population[len(population)-1], nil
}
