// Package combat provides the initiative-based battle engine for cardrun.
package combat

import (
	"fmt"
	"math"

	"github.com/samdwyer/cardrun/internal/entity"
)

const (
	// Multipliers applied to the defender's defense for attack types it lists.
	weaknessDefenseFactor   = 0.5
	resistanceDefenseFactor = 1.5
)

// EffectResult contains the outcome of resolving one action.
type EffectResult struct {
	Success  bool
	Target   *entity.Unit
	Damage   int  // Raw damage dealt before the shield
	Absorbed int  // Part of Damage taken by the shield
	Lost     int  // Health actually lost
	Killed   bool // Target died from this action
	Healing  int
	Shielded int
	Message  string // Human-readable description
}

// Resolver calculates and applies attacks and defensive moves.
// It holds no state; results are returned rather than broadcast.
type Resolver struct{}

// NewResolver creates a resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// DefenseFactor returns the multiplier applied to the defender's defense
// against the attacker's damage type. Resistance wins if both lists match.
func DefenseFactor(attacker, defender *entity.Unit) float64 {
	attackType := attacker.Card.AttackType
	switch {
	case defender.Resists(attackType):
		return resistanceDefenseFactor
	case defender.WeakTo(attackType):
		return weaknessDefenseFactor
	default:
		return 1.0
	}
}

// RawDamage is floor(attack*strength - defense*factor), never negative.
func RawDamage(attacker, defender *entity.Unit) int {
	offense := float64(attacker.Card.Attack * attacker.Card.Strength)
	defense := float64(defender.Card.Defense) * DefenseFactor(attacker, defender)
	return max(0, int(math.Floor(offense-defense)))
}

// CanKill reports whether one attack would bring the defender to 0 health,
// counting its current shield.
func CanKill(attacker, defender *entity.Unit) bool {
	if !defender.IsAlive() {
		return false
	}
	return RawDamage(attacker, defender) >= defender.HP+defender.Shield
}

// Attack resolves an attack. Attacking a dead or missing unit is a no-op.
func (r *Resolver) Attack(attacker, defender *entity.Unit) EffectResult {
	if defender == nil {
		return EffectResult{Message: attacker.Name() + " has no target"}
	}
	if !defender.IsAlive() {
		return EffectResult{
			Target:  defender,
			Message: fmt.Sprintf("%s attacks %s, but it is already dead", attacker.Name(), defender.Name()),
		}
	}

	damage := RawDamage(attacker, defender)
	absorbed, lost := defender.TakeDamage(damage)

	result := EffectResult{
		Success:  true,
		Target:   defender,
		Damage:   damage,
		Absorbed: absorbed,
		Lost:     lost,
		Killed:   !defender.IsAlive(),
	}
	switch {
	case result.Killed:
		result.Message = fmt.Sprintf("%s defeats %s!", attacker.Name(), defender.Name())
	case absorbed > 0:
		result.Message = fmt.Sprintf("%s hits %s for %d (%d blocked)", attacker.Name(), defender.Name(), lost, absorbed)
	default:
		result.Message = fmt.Sprintf("%s hits %s for %d", attacker.Name(), defender.Name(), lost)
	}
	return result
}

// Defend resolves the actor's defensive move. Ally-targeted moves fall back
// to the actor when target is nil or not a living-or-dead member of allies.
// Heals against a dead target do nothing.
func (r *Resolver) Defend(actor, target *entity.Unit, allies entity.Roster) EffectResult {
	move := actor.DefenseMove()
	if !move.HasEffect() {
		return EffectResult{Target: actor, Message: actor.Name() + " has no defensive move"}
	}

	recipient := actor
	if move.TargetsAlly() && target != nil && allies.Contains(target) {
		recipient = target
	}

	result := EffectResult{Target: recipient}
	if move.IsHeal() {
		if !recipient.IsAlive() {
			result.Message = fmt.Sprintf("%s cannot heal %s", actor.Name(), recipient.Name())
			return result
		}
		result.Healing = recipient.Heal(actor.Card.HealValue)
		result.Success = true
		result.Message = fmt.Sprintf("%s heals %s for %d", actor.Name(), recipient.Name(), result.Healing)
		return result
	}

	result.Shielded = recipient.AddShield(actor.Card.ShieldValue)
	result.Success = result.Shielded > 0
	result.Message = fmt.Sprintf("%s shields %s for %d", actor.Name(), recipient.Name(), result.Shielded)
	return result
}
