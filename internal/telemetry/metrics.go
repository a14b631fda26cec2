package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the game's Prometheus metrics on a private registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	GenerationAttempts prometheus.Counter
	GraphsRejected     prometheus.Counter
	Expansions         *prometheus.CounterVec
	Battles            *prometheus.CounterVec
	CombatTurns        prometheus.Counter
	BattleTurns        prometheus.Histogram
	Runs               *prometheus.CounterVec
}

// NewCollector creates and registers the metrics under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		GenerationAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_attempts_total",
			Help:      "Raw graphs generated, accepted or not",
		}),
		GraphsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphs_rejected_total",
			Help:      "Raw graphs discarded because the finish was unreachable",
		}),
		Expansions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "territory_expansions_total",
			Help:      "Nodes added to the held territory",
		}, []string{"phase"}),
		Battles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "battles_total",
			Help:      "Finished battles by result",
		}, []string{"result"}),
		CombatTurns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "combat_turns_total",
			Help:      "Unit turns resolved across all battles",
		}),
		BattleTurns: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "battle_turns",
			Help:      "Turns taken per battle",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 9),
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by result",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		c.GenerationAttempts,
		c.GraphsRejected,
		c.Expansions,
		c.Battles,
		c.CombatTurns,
		c.BattleTurns,
		c.Runs,
	)
	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveGeneration records one raw graph and whether it was rejected.
func (c *Collector) ObserveGeneration(rejected bool) {
	if c == nil {
		return
	}
	c.GenerationAttempts.Inc()
	if rejected {
		c.GraphsRejected.Inc()
	}
}

// ObserveExpansion records a territory expansion in the given planner phase.
func (c *Collector) ObserveExpansion(phase string) {
	if c == nil {
		return
	}
	c.Expansions.WithLabelValues(phase).Inc()
}

// ObserveTurn records one resolved combat turn.
func (c *Collector) ObserveTurn() {
	if c == nil {
		return
	}
	c.CombatTurns.Inc()
}

// ObserveBattle records a finished battle.
func (c *Collector) ObserveBattle(won bool, turns int) {
	if c == nil {
		return
	}
	c.Battles.WithLabelValues(resultLabel(won)).Inc()
	c.BattleTurns.Observe(float64(turns))
}

// ObserveRun records a finished run.
func (c *Collector) ObserveRun(won bool) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(resultLabel(won)).Inc()
}

// Handler returns an HTTP handler exposing the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func resultLabel(won bool) string {
	if won {
		return "won"
	}
	return "lost"
}
