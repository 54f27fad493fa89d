package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/restaurant-seeder/internal/cli"
	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/pipeline"
	"github.com/joseph-ayodele/restaurant-seeder/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := common.LoadConfig()

	var (
		logOpts cli.LogOptions
		once    bool
	)
	fs := pflag.NewFlagSet("seedd", pflag.ExitOnError)
	fs.StringVar(&cfg.Server.GRPCAddr, "grpc-addr", cfg.Server.GRPCAddr, "gRPC health listen address")
	fs.StringVar(&cfg.Server.MetricsAddr, "metrics-addr", cfg.Server.MetricsAddr, "Prometheus listen address (empty disables)")
	fs.DurationVar(&cfg.Server.Interval, "interval", cfg.Server.Interval, "time between seeding runs")
	fs.StringVar(&cfg.Seed.BaseDir, "dir", cfg.Seed.BaseDir, "directory of expenditure documents")
	fs.IntVar(&cfg.Seed.Workers, "workers", cfg.Seed.Workers, "concurrent file parsers")
	fs.BoolVar(&once, "once", false, "run a single pass, then keep serving health until stopped")
	cli.BindDatabaseFlags(fs, &cfg.Database)
	cli.BindLogFlags(fs, &logOpts)
	_ = fs.Parse(os.Args[1:])

	logger, err := cli.NewLogger(os.Stdout, logOpts)
	if err != nil {
		return cli.Fail(2, "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return 1
	}
	defer server.CloseDB(store)

	seeder, err := server.NewSeeder(cfg, store, logger)
	if err != nil {
		logger.Error("failed to build seeder", "error", err)
		return 1
	}

	health := server.NewHealth(logger)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return health.Serve(cfg.Server.GRPCAddr) })
	// sqlite runs on a single connection; a ping would queue behind the seeding transaction
	if cfg.Database.Driver != "sqlite" {
		g.Go(func() error {
			health.Watch(gctx, store, 30*time.Second, cfg.Database.DialTimeout)
			return nil
		})
	}

	if cfg.Server.MetricsAddr != "" {
		metricsSrv := server.NewMetricsServer(cfg.Server.MetricsAddr)
		g.Go(func() error {
			logger.Info("metrics listening", "addr", cfg.Server.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		runLoop(gctx, seeder, pipeline.OptionsFromConfig(cfg.Seed), cfg.Server.Interval, once, logger)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		health.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("seedd stopped", "error", err)
		return 1
	}
	logger.Info("seedd stopped")
	return 0
}

func runLoop(ctx context.Context, seeder *server.Seeder, opts pipeline.Options, interval time.Duration, once bool, logger *slog.Logger) {
	if interval <= 0 {
		once = true
		interval = time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		summary, err := seeder.Run(ctx, opts)
		if err != nil {
			logger.Error("seed.run.failed", append(summary.LogAttrs(), "error", err)...)
		} else {
			logger.Info("seed.run.done", summary.LogAttrs()...)
		}
		if once {
			<-ctx.Done()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
