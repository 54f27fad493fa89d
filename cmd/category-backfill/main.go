package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/joseph-ayodele/restaurant-seeder/internal/backfill"
	"github.com/joseph-ayodele/restaurant-seeder/internal/cli"
	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := common.LoadConfig()

	var (
		logOpts cli.LogOptions
		opts    backfill.Options
		asJSON  bool
	)
	fs := pflag.NewFlagSet("category-backfill", pflag.ExitOnError)
	fs.IntVar(&opts.Limit, "limit", 0, "maximum records to visit (0 = all)")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "resolve categories without writing them")
	fs.IntVar(&opts.BatchSize, "batch", 100, "records per transaction")
	fs.DurationVar(&opts.RateLimit, "rate", 100*time.Millisecond, "pause between local search calls")
	fs.Float64Var(&opts.Radius, "radius", 1000, "maximum distance in meters between a record and its match")
	fs.BoolVar(&opts.Force, "force", false, "revisit records that already have a category")
	fs.BoolVar(&asJSON, "json", false, "print stats as JSON")
	cli.BindDatabaseFlags(fs, &cfg.Database)
	cli.BindLogFlags(fs, &logOpts)
	_ = fs.Parse(os.Args[1:])

	logger, err := cli.NewLogger(os.Stderr, logOpts)
	if err != nil {
		return cli.Fail(2, "%v", err)
	}
	if cfg.LocalSearch.ClientID == "" || cfg.LocalSearch.ClientSecret == "" {
		return cli.Fail(2, "NAVER_SEARCH_CLIENT_ID and NAVER_SEARCH_CLIENT_SECRET are required")
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

	stats, runErr := seeder.Backfill(ctx, opts)
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(stats)
	} else {
		printStats(stats, opts.DryRun)
	}
	if runErr != nil {
		return cli.Fail(1, "%v", runErr)
	}
	if stats.Errors > 0 {
		return 3
	}
	return 0
}

func printStats(s backfill.Stats, dryRun bool) {
	title := "backfill"
	if dryRun {
		title += color.YellowString(" (dry run)")
	}
	fmt.Println(color.New(color.Bold).Sprint(title))
	fmt.Printf("  visited   %d\n", s.Total)
	fmt.Printf("  updated   %s\n", color.GreenString("%d", s.Updated))
	fmt.Printf("  skipped   %d\n", s.Skipped)
	fmt.Printf("  api       %d ok, %d failed, %d not found, %d unparsable\n", s.APISuccess, s.APIFail, s.NotFound, s.ParseFail)
	if s.Errors > 0 {
		fmt.Printf("  errors    %s\n", color.RedString("%d", s.Errors))
	}
}
