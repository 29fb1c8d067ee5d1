package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"cellplan/internal/model"
)

// GenerateConfig shapes a synthetic clustered client set.
type GenerateConfig struct {
	Count     int
	Clusters  int
	MapWidth  int
	MapHeight int
	Seed      int64
}

// Generate produces Count clients spread across Gaussian clusters with
// uniformly placed centers. Samples falling outside the map are redrawn a
// few times, then clamped.
func Generate(cfg GenerateConfig) ([]model.Client, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("client count must be > 0, got %d", cfg.Count)
	}
	if cfg.Clusters <= 0 {
		return nil, fmt.Errorf("cluster count must be > 0, got %d", cfg.Clusters)
	}
	if cfg.MapWidth <= 0 || cfg.MapHeight <= 0 {
		return nil, fmt.Errorf("map dimensions must be > 0, got %dx%d", cfg.MapWidth, cfg.MapHeight)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	width := float64(cfg.MapWidth)
	height := float64(cfg.MapHeight)
	shortestSide := math.Min(width, height)

	// Every cluster gets at least one client; the remainder lands on a
	// random cluster.
	sizes := make([]int, cfg.Clusters)
	for i := range sizes {
		sizes[i] = 1
	}
	for i := 0; i < cfg.Count-cfg.Clusters; i++ {
		sizes[rng.Intn(cfg.Clusters)]++
	}

	type cluster struct {
		x, y, spread float64
	}
	clusters := make([]cluster, 0, cfg.Clusters)
	for i := 0; i < cfg.Clusters; i++ {
		clusters = append(clusters, cluster{
			x:      rng.Float64() * width,
			y:      rng.Float64() * height,
			spread: (0.025 + rng.Float64()*0.025) * shortestSide,
		})
	}

	clients := make([]model.Client, 0, cfg.Count)
	id := 1
	for i, c := range clusters {
		for j := 0; j < sizes[i]; j++ {
			x := sampleCoordinate(rng, c.x, c.spread, width)
			y := sampleCoordinate(rng, c.y, c.spread, height)
			clients = append(clients, model.Client{
				ID: fmt.Sprintf("C%03d", id),
				X:  x,
				Y:  y,
			})
			id++
		}
	}
	return clients, nil
}

func sampleCoordinate(rng *rand.Rand, center, spread, upperBound float64) float64 {
	value := center
	for i := 0; i < 8; i++ {
		value = center + rng.NormFloat64()*spread
		if value >= 0 && value <= upperBound {
			break
		}
	}
	return math.Round(math.Max(0, math.Min(upperBound, value)))
}
