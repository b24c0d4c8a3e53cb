package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sambigeara/permcalc/pkg/config"
	"github.com/sambigeara/permcalc/pkg/convert"
	"github.com/sambigeara/permcalc/pkg/httpapi"
	"github.com/sambigeara/permcalc/pkg/observability/logging"
	"github.com/sambigeara/permcalc/pkg/observability/metrics"
	"github.com/sambigeara/permcalc/pkg/observability/tracing"
	"github.com/sambigeara/permcalc/pkg/rpc"
	"github.com/sambigeara/permcalc/pkg/server"
	"github.com/sambigeara/permcalc/pkg/sysinfo"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the connect service and the health socket",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

// loadConfig layers the environment and --log-level over config.yaml and
// validates the result.
func loadConfig(cmd *cobra.Command, dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", config.Path(dir), err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	dir, err := stateDir(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, dir)
	if err != nil {
		return err
	}
	socketMode, err := cfg.SocketFileMode()
	if err != nil {
		return err
	}

	log, err := logging.Init(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := metrics.NewRecorder()
	if err != nil {
		return err
	}
	tp := tracing.NewProvider(log)
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown tracer provider", zap.Error(err))
		}
		if err := rec.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown metrics", zap.Error(err))
		}
	}()

	conv := convert.New(log, rec, tp)
	sampler := sysinfo.NewSampler(sysinfo.NewHostCollector(cfg.Sampling.DiskPath), cfg.Sampling.Interval, log)

	api := httpapi.New(httpapi.Options{
		Log:       log,
		Converter: conv,
		System:    sampler,
		Counters:  rec,
		Thresholds: sysinfo.Thresholds{
			MemoryPercent: cfg.Thresholds.MemoryPercent,
			DiskPercent:   cfg.Thresholds.DiskPercent,
		},
		Info: httpapi.Info{Environment: cfg.Environment},
	})
	api.Handle(rpc.NewHandler(conv))

	health := server.NewHealthServer(log, cfg.SocketPath(dir), socketMode)

	zap.S().Infow("starting permcalc...",
		"version", httpapi.DefaultVersion,
		"environment", cfg.Environment,
		"listen", cfg.HTTP.Listen,
		"dir", dir)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sampler.Run(gctx) })
	g.Go(func() error { return server.ServeHTTP(gctx, log, cfg.HTTP.Listen, api.Handler()) })
	g.Go(func() error { return health.Start(gctx) })
	health.SetServing(true)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("permcalc stopped", zap.Error(err))
		return err
	}
	log.Info("permcalc stopped")
	return nil
}
