// Package problem translates binary chromosomes into antenna coordinates
// and scores them against a fixed client set.
package problem

import (
	"fmt"

	"cellplan/internal/model"
)

// Spec holds the geometric parameters of one placement problem.
type Spec struct {
	NumAntennas    int
	BitsPerCoord   int
	MapWidth       int
	MapHeight      int
	CoverageRadius float64
}

// Problem is an immutable placement problem. Decode and Fitness are pure
// functions of (genes, spec); the client set never changes after New.
type Problem struct {
	spec    Spec
	clients []model.Client

	// client coordinates split into flat arrays so the fitness inner
	// loop runs over contiguous memory.
	clientX []float64
	clientY []float64

	chromosomeLength int
	radiusSquared    float64
}

// New validates the spec and builds a problem over the given clients.
// NumAntennas may be zero; such a problem has an empty chromosome and
// every fitness is zero.
func New(spec Spec, clients []model.Client) (*Problem, error) {
	if spec.NumAntennas < 0 {
		return nil, fmt.Errorf("%w: num antennas must be >= 0, got %d", model.ErrInvalidConfiguration, spec.NumAntennas)
	}
	if spec.BitsPerCoord <= 0 {
		return nil, fmt.Errorf("%w: bits per coord must be > 0, got %d", model.ErrInvalidConfiguration, spec.BitsPerCoord)
	}
	if spec.MapWidth <= 0 || spec.MapHeight <= 0 {
		return nil, fmt.Errorf("%w: map dimensions must be > 0, got %dx%d", model.ErrInvalidConfiguration, spec.MapWidth, spec.MapHeight)
	}
	if spec.CoverageRadius <= 0 {
		return nil, fmt.Errorf("%w: coverage radius must be > 0, got %g", model.ErrInvalidConfiguration, spec.CoverageRadius)
	}

	clientX := make([]float64, len(clients))
	clientY := make([]float64, len(clients))
	for i, c := range clients {
		clientX[i] = c.X
		clientY[i] = c.Y
	}

	return &Problem{
		spec:             spec,
		clients:          clients,
		clientX:          clientX,
		clientY:          clientY,
		chromosomeLength: spec.NumAntennas * spec.BitsPerCoord * 2,
		radiusSquared:    spec.CoverageRadius * spec.CoverageRadius,
	}, nil
}

// Spec returns the problem parameters.
func (p *Problem) Spec() Spec {
	return p.spec
}

// Clients returns the ordered client set.
func (p *Problem) Clients() []model.Client {
	return p.clients
}

// ClientCount returns the number of demand points.
func (p *Problem) ClientCount() int {
	return len(p.clients)
}

// ChromosomeLength is NumAntennas * BitsPerCoord * 2: two coordinates per
// antenna, BitsPerCoord bits each.
func (p *Problem) ChromosomeLength() int {
	return p.chromosomeLength
}

// Decode converts a chromosome into one (x, y) coordinate pair per antenna.
// Each coordinate is read most-significant-bit first and clamped to the map
// bounds: 2^BitsPerCoord-1 may exceed a map dimension, and clamping (not
// wraparound or rejection) is the defined policy.
func (p *Problem) Decode(genes []byte) ([]model.Coordinate, error) {
	if len(genes) != p.chromosomeLength {
		return nil, fmt.Errorf("%w: length %d, want %d", model.ErrInvalidChromosome, len(genes), p.chromosomeLength)
	}

	coords := make([]model.Coordinate, 0, p.spec.NumAntennas)
	genesPerAntenna := p.spec.BitsPerCoord * 2
	for i := 0; i < p.spec.NumAntennas; i++ {
		start := i * genesPerAntenna
		mid := start + p.spec.BitsPerCoord
		end := start + genesPerAntenna

		x := bitsToInt(genes[start:mid])
		y := bitsToInt(genes[mid:end])

		coords = append(coords, model.Coordinate{
			X: min(x, p.spec.MapWidth),
			Y: min(y, p.spec.MapHeight),
		})
	}
	return coords, nil
}

// Fitness counts the distinct clients within CoverageRadius (inclusive,
// Euclidean) of at least one decoded antenna. A client covered by several
// antennas counts once.
func (p *Problem) Fitness(genes []byte) (int, error) {
	coords, err := p.Decode(genes)
	if err != nil {
		return 0, err
	}

	covered := 0
	for i := range p.clientX {
		for _, coord := range coords {
			dx := p.clientX[i] - float64(coord.X)
			dy := p.clientY[i] - float64(coord.Y)
			// Squared comparison preserves the <= boundary: both
			// sides are non-negative and squaring is monotonic.
			if dx*dx+dy*dy <= p.radiusSquared {
				covered++
				break
			}
		}
	}
	return covered, nil
}

func bitsToInt(bits []byte) int {
	value := 0
	for _, b := range bits {
		value = value<<1 | int(b)
	}
	return value
}
