// Command binalloc-bench runs a set of soak-test / property scenarios
// against the allocator package, optionally hot reloading its run
// configuration while a long soak is in flight.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vela-alloc/binalloc/allocator"
	"github.com/vela-alloc/binalloc/internal/config"
	"github.com/vela-alloc/binalloc/sizeclass"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML run config (defaults built in if empty)")
	watch := flag.Bool("watch", false, "hot-reload the config file for the duration of the run")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "binalloc-bench: logger init:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal("load config", zap.Error(err))
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	runID := uuid.New()
	logger = logger.With(zap.String("run_id", runID.String()))

	cfgCh := make(chan config.Config, 1)
	if *watch && *configPath != "" {
		w, err := config.Watch(*configPath, func(c config.Config) {
			if err := c.Validate(); err != nil {
				logger.Warn("reloaded config rejected", zap.Error(err))
				return
			}
			select {
			case cfgCh <- c:
			default:
			}
			logger.Info("config reloaded", zap.Int("threads", c.Threads), zap.Int("iterations", c.Iterations))
		})
		if err != nil {
			logger.Fatal("watch config", zap.Error(err))
		}
		defer w.Close()
	}

	classes := sizeclass.Classes
	if cfg.Profile == "reduced" {
		classes = sizeclass.Reduced
	}
	alloc := allocator.New(allocator.WithSizeClasses(classes))

	runner := &runner{alloc: alloc, logger: logger, cfg: cfg, cfgCh: cfgCh}
	if err := runner.run(); err != nil {
		logger.Fatal("soak run failed", zap.Error(err))
	}
	logger.Info("soak run complete")
}

type runner struct {
	alloc  *allocator.Allocator
	logger *zap.Logger
	cfg    config.Config
	cfgCh  chan config.Config
}

// currentConfig drains the most recent hot-reloaded config, if any,
// without blocking.
func (r *runner) currentConfig() config.Config {
	select {
	case c := <-r.cfgCh:
		r.cfg = c
	default:
	}
	return r.cfg
}

func (r *runner) run() error {
	scenarios := map[string]func() error{
		"linear_growth":  r.scenarioLinearGrowth,
		"churn_boundary": r.scenarioChurnBoundary,
		"multithread":    r.scenarioMultithread,
		"large_path":     r.scenarioLargePath,
		"abi_roundtrip":  r.scenarioABIRoundtrip,
		"alignment_cap":  r.scenarioAlignmentCap,
	}

	for _, name := range r.cfg.Scenarios {
		fn, ok := scenarios[name]
		if !ok {
			r.logger.Warn("unknown scenario, skipping", zap.String("scenario", name))
			continue
		}
		start := time.Now()
		err := fn()
		elapsed := time.Since(start)
		if err != nil {
			r.logger.Error("scenario failed",
				zap.String("scenario", name),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
			return err
		}
		r.logger.Info("scenario passed",
			zap.String("scenario", name),
			zap.Duration("elapsed", elapsed),
		)
	}
	return nil
}
