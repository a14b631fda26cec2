package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/cardrun/internal/combat"
	"github.com/samdwyer/cardrun/internal/deck"
	"github.com/samdwyer/cardrun/internal/gamedata"
	"github.com/samdwyer/cardrun/internal/session"
	"github.com/samdwyer/cardrun/internal/telemetry"
	"github.com/samdwyer/cardrun/internal/territory"
	"github.com/samdwyer/cardrun/internal/world"
)

var (
	// ErrRunOver is returned when acting on a finished run.
	ErrRunOver = errors.New("run is over")
	// ErrNotEnoughGold is returned when an upgrade costs more than the player has.
	ErrNotEnoughGold = errors.New("not enough gold")
	// ErrNoSuchSlot is returned for a deck slot that does not exist.
	ErrNoSuchSlot = errors.New("no such deck slot")
	// ErrNotAtShop is returned when shopping away from the shop node.
	ErrNotAtShop = errors.New("player is not at the shop")
)

// Run is one playthrough: a generated map, the session on it and the deck
// the player fights with.
type Run struct {
	State    *session.State
	Deck     deck.Deck
	Upgrades deck.Upgrades
	Over     bool
	Won      bool
}

// Roster returns the upgraded card copies the player fights with.
func (r *Run) Roster() []gamedata.CardDef {
	return r.Upgrades.Apply(r.Deck)
}

// TurnResult reports everything that happened after one player move.
type TurnResult struct {
	Moved            bool
	EnteredTerritory bool        // Player stepped onto held ground
	Expanded         *world.Node // Node the territory took this turn, nil if none
	Phase            territory.Phase
	AtShop           bool
	Battle           *combat.Outcome // Set when the move started a fight
	Finished         bool            // Run ended this turn
	Won              bool
}

// Runner wires the generator, planner and battle engine into the turn flow
// shared by the terminal game and the simulator.
type Runner struct {
	catalog      *gamedata.Catalog
	generator    *world.Generator
	planner      *territory.Planner
	engine       *combat.Engine
	store        deck.Store
	rng          *rand.Rand
	startingGold int
	logger       zerolog.Logger
	metrics      *telemetry.Collector
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEngine replaces the default battle engine.
func WithEngine(e *combat.Engine) RunnerOption {
	return func(r *Runner) { r.engine = e }
}

// WithGenerator replaces the default graph generator.
func WithGenerator(g *world.Generator) RunnerOption {
	return func(r *Runner) { r.generator = g }
}

// WithPlanner replaces the default territory planner.
func WithPlanner(p *territory.Planner) RunnerOption {
	return func(r *Runner) { r.planner = p }
}

// WithStartingGold sets the gold each run begins with.
func WithStartingGold(gold int) RunnerOption {
	return func(r *Runner) { r.startingGold = gold }
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *telemetry.Collector) RunnerOption {
	return func(r *Runner) { r.metrics = c }
}

// NewRunner creates a runner. Components not supplied through options are
// built with defaults from catalog and rng.
func NewRunner(catalog *gamedata.Catalog, store deck.Store, rng *rand.Rand, opts ...RunnerOption) *Runner {
	r := &Runner{
		catalog: catalog,
		store:   store,
		rng:     rng,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.generator == nil {
		r.generator = world.NewGenerator(catalog, rng, world.WithLogger(r.logger), world.WithMetrics(r.metrics))
	}
	if r.planner == nil {
		r.planner = territory.NewPlanner(territory.WithLogger(r.logger))
	}
	if r.engine == nil {
		r.engine = combat.NewEngine(combat.WithLogger(r.logger), combat.WithMetrics(r.metrics))
	}
	return r
}

// Catalog returns the card templates runs draw from.
func (r *Runner) Catalog() *gamedata.Catalog { return r.catalog }

// Store returns the deck store.
func (r *Runner) Store() deck.Store { return r.store }

// NewRun generates a fresh map and loads the saved deck. The deck must hold
// at least one card and satisfy the building rules.
func (r *Runner) NewRun(ctx context.Context) (*Run, error) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.init")
	defer span.End()

	d := r.store.LoadDeck()
	if err := d.ValidateForRun(); err != nil {
		return nil, err
	}

	graph, err := r.generator.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("new run: %w", err)
	}

	state, err := session.NewState(graph, session.WithLogger(r.logger), session.WithGold(r.startingGold))
	if err != nil {
		return nil, fmt.Errorf("new run: %w", err)
	}

	span.SetAttributes(
		attribute.String("run.id", state.RunID.String()),
		attribute.Int("graph.nodes", len(graph.Nodes)),
		attribute.Int("deck.size", len(d)),
		attribute.Int("deck.power", d.TotalPower()),
	)
	state.Logger().Info().
		Int("nodes", len(graph.Nodes)).
		Int("deck_size", len(d)).
		Msg("run started")

	return &Run{State: state, Deck: d, Upgrades: r.store.LoadUpgrades()}, nil
}

// Move carries out one player turn: move, territory growth, then the shop or
// a battle, then the finish check. ctrl decides the player's battle turns.
func (r *Runner) Move(ctx context.Context, run *Run, dest *world.Node, ctrl combat.Controller) (TurnResult, error) {
	if run.Over {
		return TurnResult{}, ErrRunOver
	}

	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "session.move")
	defer span.End()

	moved, err := run.State.MovePlayer(dest)
	if err != nil || !moved {
		return TurnResult{}, err
	}
	span.SetAttributes(attribute.Int("node.id", dest.ID), attribute.Int("moves", run.State.Moves))

	result := TurnResult{Moved: true, EnteredTerritory: run.State.PlayerInTerritory()}
	if result.EnteredTerritory {
		run.State.Logger().Info().Int("node_id", dest.ID).Msg("player entered held territory")
	}

	result.Expanded, result.Phase = r.expand(ctx, run)

	switch {
	case dest.IsShop:
		result.AtShop = true
		return result, nil
	case dest.NeedsBattle():
		outcome := r.fight(ctx, run, dest, ctrl)
		result.Battle = &outcome
		if !outcome.Won {
			r.finish(run, false)
			result.Finished = true
			return result, nil
		}
	}

	if run.State.AtFinish() {
		r.finish(run, true)
		result.Finished, result.Won = true, true
	}
	return result, nil
}

// LeaveShop gives the territory its turn for the shop visit and repeats the
// finish check.
func (r *Runner) LeaveShop(ctx context.Context, run *Run) TurnResult {
	result := TurnResult{EnteredTerritory: run.State.PlayerInTerritory()}
	result.Expanded, result.Phase = r.expand(ctx, run)
	if run.State.AtFinish() {
		r.finish(run, true)
		result.Finished, result.Won = true, true
	}
	return result
}

// BuyUpgrade raises deck slot by one level if the player is at the shop and
// can afford it. The new levels are saved.
func (r *Runner) BuyUpgrade(run *Run, slot int) error {
	if !run.State.Player.IsShop {
		return ErrNotAtShop
	}
	if slot < 0 || slot >= len(run.Deck) {
		return ErrNoSuchSlot
	}
	cost := run.Upgrades.NextCost(slot)
	if !run.State.SpendGold(cost) {
		return ErrNotEnoughGold
	}
	level := run.Upgrades.Raise(slot)
	run.State.Logger().Info().Int("slot", slot).Int("level", level).Int("cost", cost).Msg("upgrade bought")

	if err := r.store.SaveUpgrades(run.Upgrades); err != nil {
		r.logger.Warn().Err(err).Msg("saving upgrades failed")
	}
	return nil
}

func (r *Runner) expand(ctx context.Context, run *Run) (*world.Node, territory.Phase) {
	node, phase := r.planner.PlanExpansion(ctx, run.State)
	if node == nil || !run.State.ExpandTerritory(node) {
		return nil, phase
	}
	r.metrics.ObserveExpansion(phase.String())
	return node, phase
}

func (r *Runner) fight(ctx context.Context, run *Run, node *world.Node, ctrl combat.Controller) combat.Outcome {
	opponents := r.catalog.Select(node.Enemies)
	outcome := r.engine.StartBattle(ctx, opponents, run.Roster(), ctrl)
	run.State.RecordBattle(node, outcome.Won, outcome.Defeated)
	return outcome
}

func (r *Runner) finish(run *Run, won bool) {
	run.Over, run.Won = true, won
	r.metrics.ObserveRun(won)
	run.State.Logger().Info().
		Bool("won", won).
		Int("moves", run.State.Moves).
		Int("gold", run.State.Gold).
		Int("enemies_defeated", run.State.Stats.EnemiesDefeated).
		Str("strongest_enemy", run.State.Stats.StrongestEnemy).
		Msg("run finished")
}
