package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
	"github.com/joseph-ayodele/restaurant-seeder/internal/cli"
	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/pipeline"
	"github.com/joseph-ayodele/restaurant-seeder/internal/server"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exiting.
func run() int {
	cfg := common.LoadConfig()

	var (
		logOpts  cli.LogOptions
		exportTo string
		asJSON   bool
	)
	fs := pflag.NewFlagSet("restaurant-seed", pflag.ExitOnError)
	fs.StringVar(&cfg.Seed.BaseDir, "dir", cfg.Seed.BaseDir, "directory of expenditure documents")
	fs.IntVar(&cfg.Seed.Limit, "limit", cfg.Seed.Limit, "stop after this many processed records (0 = unlimited)")
	fs.IntVar(&cfg.Seed.CommitEvery, "commit-every", cfg.Seed.CommitEvery, "records per transaction")
	fs.IntVar(&cfg.Seed.Workers, "workers", cfg.Seed.Workers, "concurrent file parsers")
	fs.BoolVar(&cfg.Seed.AllowNoGeocode, "allow-no-geocode", cfg.Seed.AllowNoGeocode, "keep rows whose location could not be resolved")
	fs.BoolVar(&cfg.Seed.FillAddressFromGeo, "fill-address", cfg.Seed.FillAddressFromGeo, "fill missing addresses from the geocoder")
	fs.BoolVar(&cfg.LocalSearch.Enabled, "categories", cfg.LocalSearch.Enabled, "resolve categories with local search while seeding")
	fs.StringVar(&cfg.Seed.VocabPath, "vocab", cfg.Seed.VocabPath, "vocabulary YAML overriding the built-in one")
	fs.StringVar(&exportTo, "export", "", "write the restaurant table to this XLSX file after the run")
	fs.BoolVar(&asJSON, "json", false, "print the run summary as JSON")
	cli.BindDatabaseFlags(fs, &cfg.Database)
	cli.BindLogFlags(fs, &logOpts)
	_ = fs.Parse(os.Args[1:])

	logger, err := cli.NewLogger(os.Stderr, logOpts)
	if err != nil {
		return cli.Fail(2, "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Fail(2, "%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return cli.Fail(1, "open database: %v", err)
	}
	defer server.CloseDB(store)

	seeder, err := server.NewSeeder(cfg, store, logger)
	if err != nil {
		return cli.Fail(1, "%v", err)
	}

	summary, runErr := seeder.Run(ctx, pipeline.OptionsFromConfig(cfg.Seed))
	if runErr != nil {
		logger.Error("seed run failed", "error", runErr)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(summary)
	} else {
		cli.PrintSummary(os.Stdout, summary)
	}

	if exportTo != "" {
		data, err := seeder.Export(context.WithoutCancel(ctx), &summary)
		if err != nil {
			return cli.Fail(1, "export: %v", err)
		}
		if err := os.WriteFile(exportTo, data, 0o644); err != nil {
			return cli.Fail(1, "write %s: %v", exportTo, err)
		}
		logger.Info("export written", "path", exportTo, "bytes", len(data))
	}

	return exitCode(summary.Status, runErr)
}

func exitCode(status constants.RunStatus, runErr error) int {
	switch {
	case runErr != nil:
		return 1
	case status == constants.RunStatusCanceled:
		return 130
	case status == constants.RunStatusPartial:
		return 3
	default:
		return 0
	}
}
