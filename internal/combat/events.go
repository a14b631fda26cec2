package combat

import (
	"context"

	"github.com/google/uuid"

	"github.com/samdwyer/cardrun/internal/entity"
)

// EventKind identifies what happened during a battle.
type EventKind int

const (
	EventBattleStarted EventKind = iota
	EventTurnStarted
	EventTurnSkipped // Actor was stunned or in stasis
	EventAttacked
	EventDefended
	EventNoOp // Action had nothing to act on
	EventUnitDied
	EventBattleEnded
)

// String returns a snake_case name suitable for logs.
func (k EventKind) String() string {
	switch k {
	case EventBattleStarted:
		return "battle_started"
	case EventTurnStarted:
		return "turn_started"
	case EventTurnSkipped:
		return "turn_skipped"
	case EventAttacked:
		return "attacked"
	case EventDefended:
		return "defended"
	case EventNoOp:
		return "no_op"
	case EventUnitDied:
		return "unit_died"
	case EventBattleEnded:
		return "battle_ended"
	default:
		return "unknown"
	}
}

// Event is a single notification from a running battle.
type Event struct {
	Kind     EventKind
	BattleID uuid.UUID
	Turn     int
	Side     Side   // Side of the actor (or of the dead unit for EventUnitDied)
	Actor    string // Empty for battle-level events
	Target   string
	Amount   int // Health lost, healed or shielded
	Absorbed int // Damage soaked by a shield
	Message  string
	Outcome  *Outcome // Set only on EventBattleEnded

	// Live rosters of the battle, set only on EventBattleStarted.
	Players   entity.Roster
	Opponents entity.Roster
}

// Listener receives battle events synchronously on the battle goroutine.
type Listener func(Event)

// Controller chooses actions for the player's units.
// Returning an error (typically ctx.Err()) abandons the battle.
type Controller interface {
	Choose(ctx context.Context, turn Turn) (Decision, error)
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(ctx context.Context, turn Turn) (Decision, error)

// Choose calls f.
func (f ControllerFunc) Choose(ctx context.Context, turn Turn) (Decision, error) {
	return f(ctx, turn)
}

// AutoController plays the player's units with the same archetype tables
// the opponents use.
type AutoController struct{}

// Choose returns the archetype decision for the actor.
func (AutoController) Choose(ctx context.Context, turn Turn) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	return Decide(turn), nil
}
