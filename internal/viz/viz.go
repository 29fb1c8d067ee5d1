// Package viz renders PNG views of a finished run: a client-density
// heatmap with the chosen antenna positions overlaid, and the best-fitness
// trajectory across generations.
package viz

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"cellplan/internal/model"
)

const circleSegments = 64

// CoverageConfig shapes the coverage map rendering.
type CoverageConfig struct {
	MapWidth  int
	MapHeight int
	Radius    float64
	Bins      int
}

// densityGrid bins clients into equal cells over the map for the heatmap.
type densityGrid struct {
	counts     []float64
	cols, rows int
	cellW      float64
	cellH      float64
}

func newDensityGrid(clients []model.Client, width, height float64, bins int) *densityGrid {
	g := &densityGrid{
		counts: make([]float64, bins*bins),
		cols:   bins,
		rows:   bins,
		cellW:  width / float64(bins),
		cellH:  height / float64(bins),
	}
	for _, client := range clients {
		col := int(client.X / g.cellW)
		row := int(client.Y / g.cellH)
		if col >= bins {
			col = bins - 1
		}
		if row >= bins {
			row = bins - 1
		}
		if col < 0 || row < 0 {
			continue
		}
		g.counts[row*bins+col]++
	}
	return g
}

func (g *densityGrid) Dims() (int, int)   { return g.cols, g.rows }
func (g *densityGrid) Z(c, r int) float64 { return g.counts[r*g.cols+c] }
func (g *densityGrid) X(c int) float64    { return (float64(c) + 0.5) * g.cellW }
func (g *densityGrid) Y(r int) float64    { return (float64(r) + 0.5) * g.cellH }

// CoverageMap draws the client density heatmap with antenna markers and
// dashed coverage circles, and saves it as PNG.
func CoverageMap(clients []model.Client, antennas []model.Coordinate, cfg CoverageConfig, path string) error {
	if cfg.MapWidth <= 0 || cfg.MapHeight <= 0 {
		return fmt.Errorf("map dimensions must be > 0, got %dx%d", cfg.MapWidth, cfg.MapHeight)
	}
	if cfg.Radius <= 0 {
		return fmt.Errorf("coverage radius must be > 0, got %g", cfg.Radius)
	}
	if len(antennas) == 0 {
		return fmt.Errorf("at least one antenna position is required")
	}
	bins := cfg.Bins
	if bins <= 0 {
		bins = 50
	}

	p := plot.New()
	p.Title.Text = "Client density and antenna coverage"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.X.Min, p.X.Max = 0, float64(cfg.MapWidth)
	p.Y.Min, p.Y.Max = 0, float64(cfg.MapHeight)

	grid := newDensityGrid(clients, float64(cfg.MapWidth), float64(cfg.MapHeight), bins)
	heat := plotter.NewHeatMap(grid, palette.Heat(16, 1))
	p.Add(heat)

	markers := make(plotter.XYs, len(antennas))
	for i, a := range antennas {
		markers[i].X = float64(a.X)
		markers[i].Y = float64(a.Y)
	}
	scatter, err := plotter.NewScatter(markers)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Shape = draw.PyramidGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(5)
	p.Add(scatter)
	p.Legend.Add("antennas", scatter)
	p.Legend.Top = true

	for _, a := range antennas {
		circle, err := coverageCircle(float64(a.X), float64(a.Y), cfg.Radius)
		if err != nil {
			return err
		}
		p.Add(circle)
	}

	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}

func coverageCircle(x, y, radius float64) (*plotter.Line, error) {
	pts := make(plotter.XYs, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		angle := 2 * math.Pi * float64(i) / circleSegments
		pts[i].X = x + radius*math.Cos(angle)
		pts[i].Y = y + radius*math.Sin(angle)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	return line, nil
}

// FitnessHistory draws the best fitness found per generation and saves it
// as PNG.
func FitnessHistory(best []int, path string) error {
	if len(best) == 0 {
		return fmt.Errorf("fitness history is empty")
	}

	p := plot.New()
	p.Title.Text = "Best fitness by generation"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Best fitness"

	pts := make(plotter.XYs, len(best))
	for i, fitness := range best {
		pts[i].X = float64(i + 1)
		pts[i].Y = float64(fitness)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	p.Legend.Add("best", line)
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
