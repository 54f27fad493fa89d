package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

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
		out     string
	)
	fs := pflag.NewFlagSet("restaurant-export", pflag.ExitOnError)
	fs.StringVarP(&out, "out", "o", "restaurants.xlsx", "output XLSX file path")
	cli.BindDatabaseFlags(fs, &cfg.Database)
	cli.BindLogFlags(fs, &logOpts)
	_ = fs.Parse(os.Args[1:])

	logger, err := cli.NewLogger(os.Stderr, logOpts)
	if err != nil {
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
	data, err := seeder.Export(ctx, nil)
	if err != nil {
		return cli.Fail(1, "export: %v", err)
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cli.Fail(1, "create %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return cli.Fail(1, "write %s: %v", out, err)
	}
	color.Green("wrote %s (%d bytes)", out, len(data))
	return 0
}
