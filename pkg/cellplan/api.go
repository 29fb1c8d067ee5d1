// Package cellplan is the public entry point for antenna placement
// optimization runs: it wires the problem model, the evolution engine, the
// report writer and the run store together.
package cellplan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"cellplan/internal/dataset"
	"cellplan/internal/engine"
	"cellplan/internal/model"
	"cellplan/internal/problem"
	"cellplan/internal/report"
	"cellplan/internal/storage"
)

const (
	defaultReportsDir = "reports"
	defaultExportsDir = "exports"
	defaultDBPath     = "cellplan.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ReportsDir string
	ExportsDir string
}

type Client struct {
	store storage.Store

	reportsDir string
	exportsDir string
}

// RunRequest configures one optimization run. Unset fields fall back to the
// documented defaults; Clients takes precedence over ClientsPath. Pointer
// fields distinguish "absent" from an explicit zero: elitism 0, crossover 0
// and mutation 0 are all legal settings.
type RunRequest struct {
	Clients     []model.Client
	ClientsPath string

	NumAntennas    int
	BitsPerCoord   int
	MapWidth       int
	MapHeight      int
	CoverageRadius float64

	PopulationSize         int
	MaxGenerations         int
	ElitismCount           *int
	CrossoverRate          *float64
	MutationRate           *float64
	MaxStagnantGenerations *int
	Seed                   int64 // 0 picks a time-based seed
	Workers                int

	Progress engine.ProgressFunc
}

// WithDefaults returns a copy of the request with every unset parameter
// resolved to its documented default. Run applies it itself; callers that
// need the effective values up front (progress totals, logging) can call it
// directly. The seed is left untouched: 0 still means "pick one at run
// time".
func (req RunRequest) WithDefaults() RunRequest {
	if req.NumAntennas == 0 {
		req.NumAntennas = 4
	}
	if req.BitsPerCoord == 0 {
		req.BitsPerCoord = 10
	}
	if req.MapWidth == 0 {
		req.MapWidth = 1000
	}
	if req.MapHeight == 0 {
		req.MapHeight = 1000
	}
	if req.CoverageRadius == 0 {
		req.CoverageRadius = 100
	}
	if req.PopulationSize == 0 {
		req.PopulationSize = 100
	}
	if req.MaxGenerations == 0 {
		req.MaxGenerations = 1000
	}
	if req.ElitismCount == nil {
		elitism := 10
		req.ElitismCount = &elitism
	}
	if req.CrossoverRate == nil {
		rate := 0.5
		req.CrossoverRate = &rate
	}
	if req.MutationRate == nil {
		rate := 0.05
		req.MutationRate = &rate
	}
	if req.MaxStagnantGenerations == nil {
		stagnant := 50
		req.MaxStagnantGenerations = &stagnant
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	return req
}

type RunSummary struct {
	RunID            string
	BestFitness      int
	BestGenes        string
	Antennas         []model.Coordinate
	GenerationsRun   int
	ClientCount      int
	BestByGeneration []int
	Seed             int64
	ReportPath       string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = "memory"
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	reportsDir := opts.ReportsDir
	if reportsDir == "" {
		reportsDir = defaultReportsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		reportsDir: reportsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run loads the client set, validates the request, executes the genetic
// algorithm once and persists the outcome. The best-ever individual is
// returned in the summary together with the generation count reached.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	clients := req.Clients
	if clients == nil && req.ClientsPath != "" {
		loaded, err := dataset.Load(req.ClientsPath)
		if err != nil {
			return RunSummary{}, fmt.Errorf("load clients: %w", err)
		}
		clients = loaded
	}
	if len(clients) == 0 {
		return RunSummary{}, fmt.Errorf("%w: optimization needs at least one client", model.ErrEmptyClientSet)
	}

	req = req.WithDefaults()
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	problemSpec := problem.Spec{
		NumAntennas:    req.NumAntennas,
		BitsPerCoord:   req.BitsPerCoord,
		MapWidth:       req.MapWidth,
		MapHeight:      req.MapHeight,
		CoverageRadius: req.CoverageRadius,
	}
	prob, err := problem.New(problemSpec, clients)
	if err != nil {
		return RunSummary{}, err
	}

	engineCfg := engine.Config{
		PopulationSize:         req.PopulationSize,
		MaxGenerations:         req.MaxGenerations,
		ElitismCount:           *req.ElitismCount,
		CrossoverRate:          *req.CrossoverRate,
		MutationRate:           *req.MutationRate,
		MaxStagnantGenerations: *req.MaxStagnantGenerations,
		Seed:                   seed,
		Workers:                req.Workers,
		Progress:               req.Progress,
	}
	eng, err := engine.New(engineCfg, prob)
	if err != nil {
		return RunSummary{}, err
	}

	result, err := eng.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	antennas, err := prob.Decode(result.Best.Genes)
	if err != nil {
		return RunSummary{}, err
	}

	runID := uuid.NewString()
	engineSpec := model.EngineSpec{
		PopulationSize:         engineCfg.PopulationSize,
		MaxGenerations:         engineCfg.MaxGenerations,
		ElitismCount:           engineCfg.ElitismCount,
		CrossoverRate:          engineCfg.CrossoverRate,
		MutationRate:           engineCfg.MutationRate,
		MaxStagnantGenerations: engineCfg.MaxStagnantGenerations,
		Seed:                   seed,
	}
	problemEcho := model.ProblemSpec{
		NumAntennas:    problemSpec.NumAntennas,
		BitsPerCoord:   problemSpec.BitsPerCoord,
		MapWidth:       problemSpec.MapWidth,
		MapHeight:      problemSpec.MapHeight,
		CoverageRadius: problemSpec.CoverageRadius,
	}

	reportText := report.Build(report.Params{
		ClientCount:    len(clients),
		Problem:        problemEcho,
		Engine:         engineSpec,
		Best:           result.Best,
		Antennas:       antennas,
		GenerationsRun: result.GenerationsRun,
	})
	reportPath := filepath.Join(c.reportsDir, fmt.Sprintf("run_%s.txt", runID))
	if err := os.MkdirAll(c.reportsDir, 0o755); err != nil {
		return RunSummary{}, err
	}
	if err := os.WriteFile(reportPath, []byte(reportText), 0o644); err != nil {
		return RunSummary{}, err
	}

	record := model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:             runID,
		CreatedAtUTC:   time.Now().UTC().Format(time.RFC3339),
		ClientCount:    len(clients),
		Problem:        problemEcho,
		Engine:         engineSpec,
		BestFitness:    result.Best.Fitness,
		BestGenes:      result.Best.Bitstring(),
		Antennas:       antennas,
		GenerationsRun: result.GenerationsRun,
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveFitnessHistory(ctx, runID, result.BestByGeneration); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveGenerationStats(ctx, runID, result.Stats); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		BestFitness:      result.Best.Fitness,
		BestGenes:        result.Best.Bitstring(),
		Antennas:         antennas,
		GenerationsRun:   result.GenerationsRun,
		ClientCount:      len(clients),
		BestByGeneration: result.BestByGeneration,
		Seed:             seed,
		ReportPath:       reportPath,
	}, nil
}

func (c *Client) Runs(ctx context.Context, limit int) ([]model.RunRecord, error) {
	return c.store.ListRuns(ctx, limit)
}

func (c *Client) GetRun(ctx context.Context, id string) (model.RunRecord, bool, error) {
	return c.store.GetRun(ctx, id)
}

func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]int, error) {
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run %s", runID)
	}
	return history, nil
}

func (c *Client) GenerationStats(ctx context.Context, runID string) ([]model.GenerationStats, error) {
	stats, ok, err := c.store.GetGenerationStats(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("generation stats not found for run %s", runID)
	}
	return stats, nil
}

// Report rebuilds the report text for a stored run.
func (c *Client) Report(ctx context.Context, runID string) (string, error) {
	record, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("run not found: %s", runID)
	}

	best := model.Individual{
		Genes:   genesFromBitstring(record.BestGenes),
		Fitness: record.BestFitness,
		Valid:   true,
	}
	return report.Build(report.Params{
		ClientCount:    record.ClientCount,
		Problem:        record.Problem,
		Engine:         record.Engine,
		Best:           best,
		Antennas:       record.Antennas,
		GenerationsRun: record.GenerationsRun,
	}), nil
}

// Export writes a stored run and its histories as JSON files.
func (c *Client) Export(ctx context.Context, runID string) (ExportSummary, error) {
	record, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("run not found: %s", runID)
	}

	dir := filepath.Join(c.exportsDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ExportSummary{}, err
	}

	if err := writeJSON(filepath.Join(dir, "run.json"), record); err != nil {
		return ExportSummary{}, err
	}
	if history, ok, err := c.store.GetFitnessHistory(ctx, runID); err != nil {
		return ExportSummary{}, err
	} else if ok {
		if err := writeJSON(filepath.Join(dir, "fitness_history.json"), history); err != nil {
			return ExportSummary{}, err
		}
	}
	if stats, ok, err := c.store.GetGenerationStats(ctx, runID); err != nil {
		return ExportSummary{}, err
	} else if ok {
		if err := writeJSON(filepath.Join(dir, "generation_stats.json"), stats); err != nil {
			return ExportSummary{}, err
		}
	}

	return ExportSummary{RunID: runID, Directory: dir}, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func genesFromBitstring(bits string) []byte {
	genes := make([]byte, len(bits))
	for i := 0; i < len(bits); i++ {
		if bits[i] == '1' {
			genes[i] = 1
		}
	}
	return genes
}
