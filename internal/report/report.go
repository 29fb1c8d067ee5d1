// Package report renders and parses the human-readable result report.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cellplan/internal/model"
)

// Antenna position lines are the interchange format between the report and
// the visualizer, so their shape is fixed: "Antenna NN: (x, y)".
var antennaLineRE = regexp.MustCompile(`(?i)Antenna\s+\d+:\s*\((?P<x>-?\d+),\s*(?P<y>-?\d+)\)`)

// Params bundles everything the report echoes about a finished run.
type Params struct {
	ClientCount    int
	Problem        model.ProblemSpec
	Engine         model.EngineSpec
	Best           model.Individual
	Antennas       []model.Coordinate
	GenerationsRun int
}

// Build assembles the full report text.
func Build(p Params) string {
	var b strings.Builder

	b.WriteString("=== Optimization Result ===\n")
	fmt.Fprintf(&b, "Total clients: %d\n", p.ClientCount)
	fmt.Fprintf(&b, "Antennas installed: %d\n", p.Problem.NumAntennas)
	fmt.Fprintf(&b, "Best coverage found: %d clients\n", p.Best.Fitness)
	fmt.Fprintf(&b, "Generations run: %d\n", p.GenerationsRun)

	b.WriteString("\nAntenna positions (x, y):\n")
	for i, coord := range p.Antennas {
		fmt.Fprintf(&b, "  Antenna %02d: (%d, %d)\n", i+1, coord.X, coord.Y)
	}

	b.WriteString("\nBinary chromosome:\n")
	b.WriteString(p.Best.Bitstring())
	b.WriteString("\n")

	b.WriteString("\n=== Genetic Algorithm Parameters ===\n")
	fmt.Fprintf(&b, "POPULATION_SIZE: %d\n", p.Engine.PopulationSize)
	fmt.Fprintf(&b, "MAX_GENERATIONS: %d\n", p.Engine.MaxGenerations)
	fmt.Fprintf(&b, "ELITISM_COUNT: %d\n", p.Engine.ElitismCount)
	fmt.Fprintf(&b, "CROSSOVER_RATE: %g\n", p.Engine.CrossoverRate)
	fmt.Fprintf(&b, "MUTATION_RATE: %g\n", p.Engine.MutationRate)
	fmt.Fprintf(&b, "MAX_STAGNANT_GENERATIONS: %d\n", p.Engine.MaxStagnantGenerations)
	fmt.Fprintf(&b, "RANDOM_SEED: %d\n", p.Engine.Seed)

	b.WriteString("\n=== Problem Parameters ===\n")
	fmt.Fprintf(&b, "NUM_ANTENNAS: %d\n", p.Problem.NumAntennas)
	fmt.Fprintf(&b, "BITS_PER_COORD: %d\n", p.Problem.BitsPerCoord)
	fmt.Fprintf(&b, "MAP_WIDTH: %d\n", p.Problem.MapWidth)
	fmt.Fprintf(&b, "MAP_HEIGHT: %d\n", p.Problem.MapHeight)
	fmt.Fprintf(&b, "COVERAGE_RADIUS: %g\n", p.Problem.CoverageRadius)

	return b.String()
}

// ParseAntennas extracts antenna coordinates back out of a report by
// pattern-matching the position lines.
func ParseAntennas(text string) ([]model.Coordinate, error) {
	var coords []model.Coordinate
	for _, line := range strings.Split(text, "\n") {
		match := antennaLineRE.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		x, err := strconv.Atoi(match[antennaLineRE.SubexpIndex("x")])
		if err != nil {
			return nil, fmt.Errorf("parse antenna x: %w", err)
		}
		y, err := strconv.Atoi(match[antennaLineRE.SubexpIndex("y")])
		if err != nil {
			return nil, fmt.Errorf("parse antenna y: %w", err)
		}
		coords = append(coords, model.Coordinate{X: x, Y: y})
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("no antenna coordinates found in report")
	}
	return coords, nil
}
