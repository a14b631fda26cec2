// Package main runs cardrun headlessly: every move, shop visit and battle
// decision is automatic, and the aggregate win rate is reported.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/samdwyer/cardrun/internal/combat"
	"github.com/samdwyer/cardrun/internal/config"
	"github.com/samdwyer/cardrun/internal/deck"
	"github.com/samdwyer/cardrun/internal/game"
	"github.com/samdwyer/cardrun/internal/gamedata"
	"github.com/samdwyer/cardrun/internal/telemetry"
	"github.com/samdwyer/cardrun/internal/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	runs := flag.Int("runs", cfg.SimRuns, "number of runs to simulate")
	seedFlag := flag.Int64("seed", cfg.Seed, "random seed, 0 for time based")
	useSaved := flag.Bool("saved-deck", false, "play with the deck saved in the data dir")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if cfg.TelemetryEnabled {
		telemetry.ConfigureHoneycombEnv()
		shutdown, err := telemetry.Setup(ctx, "cardsim")
		if err != nil {
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

	metrics := telemetry.NewCollector("cardsim")
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	rng, seed := game.NewRNG(*seedFlag)
	catalog := gamedata.MustLoadCatalog()

	var store deck.Store
	if *useSaved {
		store = deck.NewFileStore(cfg.DataDir, logger)
	} else {
		store = deck.NewMemoryStore(game.AutoDeck(catalog, rng))
	}
	d := store.LoadDeck()
	logger.Info().Int64("seed", seed).Int("runs", *runs).Int("deck_size", len(d)).Int("deck_power", d.TotalPower()).Msg("simulation started")

	runner := newRunner(cfg, catalog, store, rng, logger, metrics)

	wins, played := 0, 0
	for i := 0; i < *runs; i++ {
		run, err := runner.NewRun(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot start run")
		}
		if err := runner.Autoplay(ctx, run); err != nil {
			logger.Warn().Err(err).Int("run", i+1).Msg("simulation interrupted")
			break
		}

		played++
		if run.Won {
			wins++
		}
		logger.Info().
			Int("run", i+1).
			Bool("won", run.Won).
			Int("moves", run.State.Moves).
			Int("battles_won", run.State.Stats.BattlesWon).
			Int("enemies_defeated", run.State.Stats.EnemiesDefeated).
			Int("gold", run.State.Stats.GoldEarned).
			Int("held", run.State.HeldCount()).
			Msg("run complete")
	}

	rate := 0.0
	if played > 0 {
		rate = float64(wins) / float64(played)
	}
	logger.Info().Int("runs", played).Int("wins", wins).Float64("win_rate", rate).Msg("simulation finished")
}

// newRunner builds a runner whose generator, engine and runs all log to logger.
func newRunner(cfg config.Config, catalog *gamedata.Catalog, store deck.Store, rng *rand.Rand,
	logger zerolog.Logger, metrics *telemetry.Collector) *game.Runner {
	return game.NewRunner(catalog, store, rng,
		game.WithGenerator(world.NewGenerator(catalog, rng,
			world.WithMaxAttempts(cfg.MaxGenerationAttempts),
			world.WithLogger(logger),
			world.WithMetrics(metrics),
		)),
		game.WithEngine(combat.NewEngine(
			combat.WithPacing(0),
			combat.WithLogger(logger),
			combat.WithMetrics(metrics),
		)),
		game.WithStartingGold(cfg.StartingGold),
		game.WithLogger(logger),
		game.WithMetrics(metrics),
	)
}
