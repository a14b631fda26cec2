package combat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/cardrun/internal/entity"
	"github.com/samdwyer/cardrun/internal/gamedata"
	"github.com/samdwyer/cardrun/internal/telemetry"
)

const (
	// DefaultPacing is the pause before each opponent turn.
	DefaultPacing = 600 * time.Millisecond

	// DefaultMaxTurns ends battles where neither side can hurt the other.
	DefaultMaxTurns = 500
)

// Outcome is the result of a finished battle.
type Outcome struct {
	BattleID  uuid.UUID
	Won       bool
	Defeated  []*entity.Unit // Opponent units killed, in roster order
	Turns     int
	Cancelled bool // Abandoned through the context or the controller
	Stalemate bool // Hit the turn limit
}

// Engine runs battles between the player's roster and an opponent roster.
// Each StartBattle call owns its own copies of the units, so one engine may
// run battles concurrently.
type Engine struct {
	resolver  *Resolver
	pacing    time.Duration
	maxTurns  int
	listeners []Listener
	logger    zerolog.Logger
	metrics   *telemetry.Collector
}

// Option configures an Engine.
type Option func(*Engine)

// WithPacing sets the pause before opponent turns. Zero disables it.
func WithPacing(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.pacing = d
		}
	}
}

// WithMaxTurns overrides the stalemate turn limit.
func WithMaxTurns(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTurns = n
		}
	}
}

// WithListener subscribes l to every battle's events.
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listeners = append(e.listeners, l) }
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *telemetry.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// NewEngine creates a battle engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		resolver: NewResolver(),
		pacing:   DefaultPacing,
		maxTurns: DefaultMaxTurns,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// battle is the mutable state of one StartBattle call.
type battle struct {
	id        uuid.UUID
	players   entity.Roster
	opponents entity.Roster
	scheduler *Scheduler
	turn      int
	span      trace.Span
	logger    zerolog.Logger
}

func (b *battle) roster(side Side) entity.Roster {
	if side == SidePlayer {
		return b.players
	}
	return b.opponents
}

func (b *battle) over() bool {
	return b.players.AliveCount() == 0 || b.opponents.AliveCount() == 0
}

// StartBattle fights opponents against players until one side is wiped out.
// Both rosters are templates: the engine builds fresh units from them.
// The controller picks actions for player units; opponents use their
// archetype tables. Cancelling ctx ends the battle as a loss with nothing
// defeated.
func (e *Engine) StartBattle(ctx context.Context, opponents, players []gamedata.CardDef, controller Controller) Outcome {
	tracer := telemetry.Tracer("combat")
	ctx, span := tracer.Start(ctx, "combat.battle")
	defer span.End()

	if controller == nil {
		controller = AutoController{}
	}

	b := &battle{
		id:        uuid.New(),
		players:   entity.NewRoster(players),
		opponents: entity.NewRoster(opponents),
		span:      span,
	}
	b.scheduler = NewScheduler(b.players, b.opponents)
	b.logger = e.logger.With().Str("battle_id", b.id.String()).Logger()

	span.SetAttributes(
		attribute.String("battle.id", b.id.String()),
		attribute.Int("battle.players", len(b.players)),
		attribute.Int("battle.opponents", len(b.opponents)),
		attribute.Int("battle.opponent_power", b.opponents.TotalPower()),
	)
	b.logger.Info().
		Int("players", len(b.players)).
		Int("opponents", len(b.opponents)).
		Msg("battle started")
	e.emit(Event{
		Kind:      EventBattleStarted,
		BattleID:  b.id,
		Message:   "Battle begins!",
		Players:   b.players,
		Opponents: b.opponents,
	})

	outcome := e.run(ctx, b, controller)

	span.SetAttributes(
		attribute.Bool("battle.won", outcome.Won),
		attribute.Int("battle.turns", outcome.Turns),
		attribute.Int("battle.defeated", len(outcome.Defeated)),
		attribute.Bool("battle.cancelled", outcome.Cancelled),
	)
	b.logger.Info().
		Bool("won", outcome.Won).
		Int("turns", outcome.Turns).
		Int("defeated", len(outcome.Defeated)).
		Bool("cancelled", outcome.Cancelled).
		Msg("battle ended")
	e.metrics.ObserveBattle(outcome.Won, outcome.Turns)

	message := "Defeat..."
	if outcome.Won {
		message = "Victory!"
	}
	e.emit(Event{Kind: EventBattleEnded, BattleID: b.id, Turn: outcome.Turns, Message: message, Outcome: &outcome})
	return outcome
}

func (e *Engine) run(ctx context.Context, b *battle, controller Controller) Outcome {
	for !b.over() {
		if ctx.Err() != nil {
			return b.abandon()
		}
		if b.turn >= e.maxTurns {
			b.logger.Warn().Int("turns", b.turn).Msg("battle hit turn limit")
			outcome := b.finish()
			outcome.Stalemate = true
			return outcome
		}

		actor, side := b.scheduler.Next()
		if actor == nil {
			break
		}
		b.turn++
		actor.ResetShield()
		e.metrics.ObserveTurn()
		e.emit(Event{Kind: EventTurnStarted, BattleID: b.id, Turn: b.turn, Side: side, Actor: actor.Name()})

		if !actor.CanAct() {
			e.emit(Event{
				Kind: EventTurnSkipped, BattleID: b.id, Turn: b.turn, Side: side,
				Actor: actor.Name(), Message: actor.Name() + " cannot act",
			})
			b.scheduler.Finish(actor)
			continue
		}

		turn := Turn{
			Number:  b.turn,
			Side:    side,
			Actor:   actor,
			Allies:  b.roster(side),
			Foes:    b.roster(side.Opposite()),
			NextFoe: PeekNext(b.roster(side.Opposite()), side.Opposite()),
		}

		var decision Decision
		if side == SideOpponent {
			if !e.pause(ctx) {
				return b.abandon()
			}
			decision = Decide(turn)
		} else {
			var err error
			decision, err = controller.Choose(ctx, turn)
			if err != nil {
				b.logger.Debug().Err(err).Msg("controller abandoned battle")
				return b.abandon()
			}
		}

		e.apply(b, turn, decision)
		b.scheduler.Finish(actor)
	}
	return b.finish()
}

// apply resolves one decision and emits the resulting events.
func (e *Engine) apply(b *battle, turn Turn, d Decision) {
	actor := turn.Actor
	b.span.AddEvent("combat.turn", trace.WithAttributes(
		attribute.Int("turn", turn.Number),
		attribute.String("side", turn.Side.String()),
		attribute.String("actor", actor.Name()),
		attribute.String("action", d.Action.String()),
		attribute.String("reason", d.Reason),
	))

	base := Event{BattleID: b.id, Turn: turn.Number, Side: turn.Side, Actor: actor.Name()}

	if d.Action == ActionDefend {
		result := e.resolver.Defend(actor, d.Target, turn.Allies)
		ev := base
		ev.Target = result.Target.Name()
		ev.Message = result.Message
		if result.Success {
			ev.Kind = EventDefended
			ev.Amount = result.Healing + result.Shielded
		} else {
			ev.Kind = EventNoOp
		}
		e.emit(ev)
		return
	}

	if d.Target == nil || !turn.Foes.Contains(d.Target) {
		b.logger.Warn().Str("actor", actor.Name()).Msg("attack without a valid target")
		ev := base
		ev.Kind = EventNoOp
		ev.Message = actor.Name() + " hesitates"
		e.emit(ev)
		return
	}

	result := e.resolver.Attack(actor, d.Target)
	ev := base
	ev.Target = d.Target.Name()
	ev.Message = result.Message
	if !result.Success {
		b.logger.Warn().Str("actor", actor.Name()).Str("target", d.Target.Name()).Msg("attack on a dead unit")
		ev.Kind = EventNoOp
		e.emit(ev)
		return
	}
	ev.Kind = EventAttacked
	ev.Amount = result.Lost
	ev.Absorbed = result.Absorbed
	e.emit(ev)

	b.logger.Debug().
		Str("attacker", actor.Name()).
		Str("target", d.Target.Name()).
		Int("damage", result.Damage).
		Int("absorbed", result.Absorbed).
		Msg("attack resolved")

	if result.Killed {
		e.emit(Event{
			Kind: EventUnitDied, BattleID: b.id, Turn: turn.Number, Side: turn.Side.Opposite(),
			Actor: d.Target.Name(), Message: d.Target.Name() + " falls",
		})
	}
}

// pause waits out the opponent pacing delay. Returns false if ctx ended first.
func (e *Engine) pause(ctx context.Context) bool {
	if e.pacing <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(e.pacing)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Engine) emit(ev Event) {
	for _, l := range e.listeners {
		l(ev)
	}
}

func (b *battle) abandon() Outcome {
	return Outcome{BattleID: b.id, Turns: b.turn, Cancelled: true}
}

func (b *battle) finish() Outcome {
	won := b.opponents.AliveCount() == 0 && b.players.AliveCount() > 0
	return Outcome{
		BattleID: b.id,
		Won:      won,
		Defeated: b.opponents.Dead(),
		Turns:    b.turn,
	}
}
