package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"rmfile/internal/config"
	"rmfile/internal/exitcodes"
	"rmfile/internal/history"
	"rmfile/internal/logging"
	"rmfile/internal/metrics"
	"rmfile/internal/remover"
	"rmfile/internal/safety"
)

const pushTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, config.DefaultPath))
}

// run wires the optional infrastructure around a single removal.
// Infrastructure failures are logged and never change stdout or the exit code.
func run(args []string, stdout io.Writer, configPath string) int {
	cfg, cfgErr := config.LoadOptional(configPath)
	if cfgErr != nil {
		cfg = config.Default()
	}

	logger, logCloser := logging.New(cfg)
	defer logCloser.Close()

	if cfgErr != nil {
		logger.Printf("[ERROR] failed to load config %s, using defaults: %v", configPath, cfgErr)
	}

	var db *history.DB
	if cfg.History.Enabled {
		var err error
		db, err = history.Open(cfg.History.DatabasePath)
		if err != nil {
			logger.Printf("[ERROR] failed to open history database: %v", err)
			db = nil
		} else {
			defer func() {
				if err := db.Close(); err != nil {
					logger.Printf("[ERROR] failed to close history database: %v", err)
				}
			}()
		}
	}

	r := remover.New(logger, db)
	if cfg.Safety.Enabled {
		r.SetValidator(safety.NewValidator(cfg.Safety.AllowedRoots, cfg.Safety.ProtectedPaths))
	}

	r.Run(args, stdout)

	if db != nil && cfg.History.RetentionDays > 0 {
		if pruned, err := db.PruneOlderThan(cfg.History.RetentionDays); err != nil {
			logger.Printf("[ERROR] failed to prune history: %v", err)
		} else if pruned > 0 {
			logger.Printf("[INFO] pruned %d history records older than %d days", pruned, cfg.History.RetentionDays)
		}
	}

	flushMetrics(cfg, logger)

	return exitcodes.Success
}

func flushMetrics(cfg *config.Config, logger *log.Logger) {
	if cfg.Metrics.TextfilePath != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Printf("[ERROR] %v", err)
		}
	}
	if cfg.Metrics.PushgatewayURL != "" {
		if err := metrics.Push(context.Background(), cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, pushTimeout); err != nil {
			logger.Printf("[ERROR] %v", err)
		}
	}
}
