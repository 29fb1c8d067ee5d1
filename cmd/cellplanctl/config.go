package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// runConfig is the user-supplied run bundle: JSON file first, then
// CELLPLAN_* environment overrides on top. Pointer fields distinguish
// "absent" from an explicit zero (a mutation rate of 0 is legal).
type runConfig struct {
	ClientsPath string `json:"clients_path" env:"CLIENTS_PATH"`

	NumAntennas    int     `json:"num_antennas" env:"NUM_ANTENNAS" validate:"omitempty,gt=0"`
	BitsPerCoord   int     `json:"bits_per_coord" env:"BITS_PER_COORD" validate:"omitempty,gt=0"`
	MapWidth       int     `json:"map_width" env:"MAP_WIDTH" validate:"omitempty,gt=0"`
	MapHeight      int     `json:"map_height" env:"MAP_HEIGHT" validate:"omitempty,gt=0"`
	CoverageRadius float64 `json:"coverage_radius" env:"COVERAGE_RADIUS" validate:"omitempty,gt=0"`

	PopulationSize         int      `json:"population_size" env:"POPULATION_SIZE" validate:"omitempty,gt=0"`
	MaxGenerations         int      `json:"max_generations" env:"MAX_GENERATIONS" validate:"omitempty,gt=0"`
	ElitismCount           *int     `json:"elitism_count" env:"ELITISM_COUNT" validate:"omitempty,gte=0"`
	CrossoverRate          *float64 `json:"crossover_rate" env:"CROSSOVER_RATE" validate:"omitempty,gte=0,lte=1"`
	MutationRate           *float64 `json:"mutation_rate" env:"MUTATION_RATE" validate:"omitempty,gte=0,lte=1"`
	MaxStagnantGenerations *int     `json:"max_stagnant_generations" env:"MAX_STAGNANT_GENERATIONS" validate:"omitempty,gte=0"`
	Seed                   int64    `json:"seed" env:"SEED"`
	Workers                int      `json:"workers" env:"WORKERS" validate:"omitempty,gt=0"`
}

// loadRunConfig reads the optional JSON config file, applies environment
// overrides and range-checks the result. The engine re-validates the final
// assembled configuration before the loop starts.
func loadRunConfig(path string) (runConfig, error) {
	var cfg runConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return runConfig{}, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return runConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "CELLPLAN_"}); err != nil {
		return runConfig{}, fmt.Errorf("parse environment: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return runConfig{}, fmt.Errorf("invalid run config: %w", err)
	}
	return cfg, nil
}
