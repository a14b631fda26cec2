// Package main is the entry point for the cardrun terminal game.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/samdwyer/cardrun/internal/combat"
	"github.com/samdwyer/cardrun/internal/config"
	"github.com/samdwyer/cardrun/internal/deck"
	"github.com/samdwyer/cardrun/internal/game"
	"github.com/samdwyer/cardrun/internal/gamedata"
	"github.com/samdwyer/cardrun/internal/telemetry"
	"github.com/samdwyer/cardrun/internal/world"
)

func main() {
	// Also loads .env, which makes HONEYCOMB_CARDRUN_API_KEY available
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout belongs to the terminal UI, so logs go to a file
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "cardrun.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	logger := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat, logFile)

	if cfg.TelemetryEnabled {
		telemetry.ConfigureHoneycombEnv()
		shutdown, err := telemetry.Setup(ctx, "cardrun")
		if err != nil {
			// Continue without telemetry - game still works
			logger.Warn().Err(err).Msg("telemetry setup failed, running without tracing")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("telemetry shutdown failed")
				}
			}()
		}
	} else {
		telemetry.Disable()
	}

	metrics := telemetry.NewCollector("cardrun")
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server stopped")
			}
		}()
	}

	rng, seed := game.NewRNG(cfg.Seed)
	logger.Info().Int64("seed", seed).Str("data_dir", cfg.DataDir).Msg("starting cardrun")

	catalog := gamedata.MustLoadCatalog()
	store := deck.NewFileStore(cfg.DataDir, logger)
	generator := world.NewGenerator(catalog, rng,
		world.WithMaxAttempts(cfg.MaxGenerationAttempts),
		world.WithLogger(logger),
		world.WithMetrics(metrics),
	)

	g, err := game.New(catalog, store, rng,
		[]combat.Option{
			combat.WithPacing(cfg.PacingDelay),
			combat.WithLogger(logger),
			combat.WithMetrics(metrics),
		},
		game.WithGenerator(generator),
		game.WithStartingGold(cfg.StartingGold),
		game.WithLogger(logger),
		game.WithMetrics(metrics),
	)
	if err != nil {
		log.Fatalf("Failed to initialize game: %v", err)
	}

	if err := g.Run(ctx); err != nil {
		log.Fatalf("Game error: %v", err)
	}
}
