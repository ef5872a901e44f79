package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chrissnell/visitbudget/internal/log"
	"github.com/chrissnell/visitbudget/internal/report"
	"github.com/chrissnell/visitbudget/pkg/budget"
	"github.com/chrissnell/visitbudget/pkg/config"
	"github.com/chrissnell/visitbudget/pkg/opsim"
	"github.com/chrissnell/visitbudget/pkg/responseformat"
	"github.com/chrissnell/visitbudget/pkg/visibility"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "survey.yaml", "Path to the survey configuration (YAML)")
	opsimPath := flag.String("opsim", "", "Survey simulation database to take pointings from (overrides opsim.path)")
	sliceMode := flag.Bool("slice", false, "Evaluate the metric one pointing at a time, as a per-slice host would")
	format := flag.String("format", "", "Output format: json, msgpack or csv (overrides output.format)")
	output := flag.String("output", "", "Output file, '-' for stdout (overrides output.path)")
	detail := flag.Bool("detail", false, "Include dark time and moon illumination for every night")
	verbose := flag.Bool("verbose", false, "Log progress for every pointing")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("visitbudget %s\n", version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	filename, _ := filepath.Abs(*cfgFile)
	cfg, err := config.NewYAMLProvider(filename).LoadConfig()
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	if *opsimPath != "" {
		if cfg.OpSim == nil {
			cfg.OpSim = &config.OpSimData{}
		}
		cfg.OpSim.Path = *opsimPath
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *output != "" {
		cfg.Output.Path = *output
	}
	cfg.Output.Detail = cfg.Output.Detail || *detail
	cfg.Verbose = cfg.Verbose || *verbose

	if err := run(context.Background(), cfg, *sliceMode); err != nil {
		log.Errorf("Visit budget run failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, sliceMode bool) error {
	window, err := cfg.ObservingWindow()
	if err != nil {
		return err
	}

	pointings, err := cfg.ParsePointings()
	if err != nil {
		return err
	}

	var columns []string
	if cfg.OpSim != nil {
		fields, names, err := loadFields(ctx, cfg)
		if err != nil {
			return err
		}
		pointings = append(pointings, fields...)
		columns = names
	}

	site := cfg.ObservingSite()
	vis, err := visibility.New(site, cfg.VisibilityOptions(), log.Named("visibility"))
	if err != nil {
		return fmt.Errorf("error creating visibility calculator: %w", err)
	}

	calc, err := budget.NewCalculator(budget.Config{
		Pointings:  pointings,
		Filters:    cfg.Filters,
		Cadence:    cfg.Cadence,
		Window:     window,
		Visibility: vis,
		Columns:    columns,
		Logger:     log.Named("budget"),
		Verbose:    cfg.Verbose,
	})
	if err != nil {
		return err
	}

	log.Infow("computing visit budgets",
		"pointings", len(pointings),
		"nights", window.Nights(),
		"uniform_cadence_hours", calc.UniformCadence(),
		"site", site.Name)

	var result *budget.Result
	if sliceMode {
		result = &budget.Result{}
		for _, p := range pointings {
			r, err := calc.RunSlice(p)
			if err != nil {
				return err
			}
			result.Append(r)
		}
	} else {
		result, err = calc.Run()
		if err != nil {
			return err
		}
	}

	builder := &report.Builder{Site: site}
	if cfg.Output.Detail {
		builder.Detail = vis
	}
	rep, err := builder.Build(calc, pointings, result)
	if err != nil {
		return err
	}

	w, closeFn, err := openOutput(cfg.Output.Path)
	if err != nil {
		return err
	}

	if err := responseformat.NewFormatter(true).Write(w, cfg.Output.Format, rep); err != nil {
		closeFn()
		return fmt.Errorf("error writing report: %w", err)
	}
	if err := closeFn(); err != nil {
		return fmt.Errorf("error closing output file: %w", err)
	}

	log.Infow("visit budget report written", "run_id", rep.RunID, "format", cfg.Output.Format, "path", cfg.Output.Path)
	return nil
}

// loadFields reads the survey database and returns its distinct pointings and
// the column names the metric registers.
func loadFields(ctx context.Context, cfg *config.Config) ([]budget.Pointing, []string, error) {
	columns := cfg.OpSim.OpSimColumns()
	db, err := opsim.Open(cfg.OpSim.Path, cfg.OpSim.Table, columns)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	visits, err := db.Visits(ctx, opsim.Query{
		Filters:  cfg.Filters,
		MinNight: cfg.OpSim.MinNight,
		MaxNight: cfg.OpSim.MaxNight,
	})
	if err != nil {
		return nil, nil, err
	}

	slices := opsim.Slices(visits)
	log.Infow("loaded survey visits",
		"path", cfg.OpSim.Path,
		"visits", len(visits),
		"fields", len(slices),
		"filters", opsim.Filters(visits),
		"exposure_hours", opsim.ExposureHours(visits))

	pointings := make([]budget.Pointing, len(slices))
	for i, s := range slices {
		pointings[i] = s.Pointing
	}

	names := db.Columns().Names()
	return pointings, names, nil
}

// openOutput returns the report destination and a function that closes it.
// An empty path or "-" selects stdout, which is never closed.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating output file: %w", err)
	}
	return f, f.Close, nil
}
