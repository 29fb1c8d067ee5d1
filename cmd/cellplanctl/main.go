package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"cellplan/internal/dataset"
	"cellplan/internal/report"
	"cellplan/internal/viz"
	"cellplan/pkg/cellplan"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "generate":
		return runGenerate(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "report":
		return runReport(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "visualize":
		return runVisualize(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON run config file")
	clientsPath := fs.String("clients", "", "clients CSV path (overrides config)")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cellplan.db", "sqlite database path")
	reportsDir := fs.String("reports-dir", "reports", "directory for run reports")
	seed := fs.Int64("seed", 0, "random seed (overrides config; 0 picks one)")
	workers := fs.Int("workers", 0, "fitness evaluation workers (overrides config)")
	quiet := fs.Bool("quiet", false, "disable the progress bar")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadRunConfig(*configPath)
	if err != nil {
		return err
	}
	if *clientsPath != "" {
		cfg.ClientsPath = *clientsPath
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	if cfg.ClientsPath == "" {
		return usageError("run needs -clients or clients_path in the config")
	}

	client, err := cellplan.New(cellplan.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ReportsDir: *reportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	req := cellplan.RunRequest{
		ClientsPath:            cfg.ClientsPath,
		NumAntennas:            cfg.NumAntennas,
		BitsPerCoord:           cfg.BitsPerCoord,
		MapWidth:               cfg.MapWidth,
		MapHeight:              cfg.MapHeight,
		CoverageRadius:         cfg.CoverageRadius,
		PopulationSize:         cfg.PopulationSize,
		MaxGenerations:         cfg.MaxGenerations,
		ElitismCount:           cfg.ElitismCount,
		CrossoverRate:          cfg.CrossoverRate,
		MutationRate:           cfg.MutationRate,
		MaxStagnantGenerations: cfg.MaxStagnantGenerations,
		Seed:                   cfg.Seed,
		Workers:                cfg.Workers,
	}

	var bar *progressBar
	if !*quiet {
		resolved := req.WithDefaults()
		bar = newProgressBar(resolved.MaxGenerations, *resolved.MaxStagnantGenerations)
		req.Progress = bar.update
	}

	fmt.Println("starting genetic algorithm optimization...")
	started := time.Now()
	summary, err := client.Run(ctx, req)
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished in %s\n", summary.RunID, time.Since(started).Round(time.Millisecond))
	fmt.Printf("clients: %s | covered by best layout: %s\n",
		humanize.Comma(int64(summary.ClientCount)), humanize.Comma(int64(summary.BestFitness)))
	fmt.Printf("generations run: %d | seed: %d\n", summary.GenerationsRun, summary.Seed)
	for i, antenna := range summary.Antennas {
		fmt.Printf("  Antenna %02d: (%d, %d)\n", i+1, antenna.X, antenna.Y)
	}
	fmt.Printf("report written to %s\n", summary.ReportPath)
	return nil
}

func runGenerate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	out := fs.String("out", "clients.csv", "output CSV path")
	count := fs.Int("count", 500, "number of clients to generate")
	clusters := fs.Int("clusters", 4, "number of client clusters")
	width := fs.Int("width", 1000, "map width")
	height := fs.Int("height", 1000, "map height")
	seed := fs.Int64("seed", 0, "random seed (0 picks one)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	effectiveSeed := *seed
	if effectiveSeed == 0 {
		effectiveSeed = time.Now().UnixNano()
	}

	clients, err := dataset.Generate(dataset.GenerateConfig{
		Count:     *count,
		Clusters:  *clusters,
		MapWidth:  *width,
		MapHeight: *height,
		Seed:      effectiveSeed,
	})
	if err != nil {
		return err
	}
	if err := dataset.Write(*out, clients); err != nil {
		return err
	}

	fmt.Printf("wrote %s clients to %s (seed %d)\n", humanize.Comma(int64(len(clients))), *out, effectiveSeed)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cellplan.db", "sqlite database path")
	limit := fs.Int("limit", 20, "maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %8s  %11s  %8s\n", "RUN", "CREATED", "CLIENTS", "GENERATIONS", "FITNESS")
	for _, record := range runs {
		fmt.Printf("%-36s  %-20s  %8d  %11d  %8d\n",
			record.ID, record.CreatedAtUTC, record.ClientCount, record.GenerationsRun, record.BestFitness)
	}
	return nil
}

func runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cellplan.db", "sqlite database path")
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("report needs -run")
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	text, err := client.Report(ctx, *runID)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cellplan.db", "sqlite database path")
	runID := fs.String("run", "", "run id")
	plotPath := fs.String("plot", "", "optional PNG path for a fitness plot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("fitness needs -run")
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}
	for i, fitness := range history {
		fmt.Printf("generation %d: best %d\n", i+1, fitness)
	}

	if *plotPath != "" {
		if err := viz.FitnessHistory(history, *plotPath); err != nil {
			return err
		}
		fmt.Printf("fitness plot written to %s\n", *plotPath)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cellplan.db", "sqlite database path")
	outDir := fs.String("out", "exports", "export directory")
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("export needs -run")
	}

	client, err := cellplan.New(cellplan.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ExportsDir: *outDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Export(ctx, *runID)
	if err != nil {
		return err
	}
	fmt.Printf("exported run %s to %s\n", summary.RunID, summary.Directory)
	return nil
}

func runVisualize(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("visualize", flag.ContinueOnError)
	clientsPath := fs.String("clients", "", "clients CSV path")
	reportPath := fs.String("report", "", "run report to read antenna positions from")
	out := fs.String("out", "coverage.png", "output PNG path")
	width := fs.Int("width", 1000, "map width")
	height := fs.Int("height", 1000, "map height")
	radius := fs.Float64("radius", 100, "coverage radius")
	bins := fs.Int("bins", 50, "heatmap bins per axis")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *clientsPath == "" || *reportPath == "" {
		return usageError("visualize needs -clients and -report")
	}

	clients, err := dataset.Load(*clientsPath)
	if err != nil {
		return err
	}

	text, err := os.ReadFile(*reportPath)
	if err != nil {
		return err
	}
	antennas, err := report.ParseAntennas(string(text))
	if err != nil {
		return err
	}

	cfg := viz.CoverageConfig{
		MapWidth:  *width,
		MapHeight: *height,
		Radius:    *radius,
		Bins:      *bins,
	}
	if err := viz.CoverageMap(clients, antennas, cfg, *out); err != nil {
		return err
	}
	fmt.Printf("coverage map written to %s\n", *out)
	return nil
}

func openClient(ctx context.Context, storeKind, dbPath string) (*cellplan.Client, error) {
	client, err := cellplan.New(cellplan.Options{StoreKind: storeKind, DBPath: dbPath})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func usageError(message string) error {
	return fmt.Errorf("%s\n\nusage: cellplanctl <command> [flags]\n\ncommands:\n"+
		"  run        execute one optimization run\n"+
		"  generate   produce a synthetic clustered client CSV\n"+
		"  runs       list stored runs\n"+
		"  report     print the report of a stored run\n"+
		"  fitness    print (and optionally plot) a run's fitness history\n"+
		"  export     write a stored run as JSON files\n"+
		"  visualize  render the coverage heatmap for a report\n", message)
}
