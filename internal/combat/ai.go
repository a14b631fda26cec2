package combat

import (
	"math"

	"github.com/samdwyer/cardrun/internal/entity"
	"github.com/samdwyer/cardrun/internal/gamedata"
)

// ActionKind is what a unit does on its turn.
type ActionKind int

const (
	ActionAttack ActionKind = iota
	ActionDefend
)

// String returns the action name.
func (a ActionKind) String() string {
	if a == ActionDefend {
		return "defend"
	}
	return "attack"
}

// Decision is a unit's chosen action and target.
type Decision struct {
	Action ActionKind
	Target *entity.Unit
	Reason string // Name of the rule that produced the decision
}

// Turn is everything a decision maker may look at.
type Turn struct {
	Number  int
	Side    Side
	Actor   *entity.Unit
	Allies  entity.Roster // Includes the actor
	Foes    entity.Roster
	NextFoe *entity.Unit // Opposing unit due to act soonest, nil if none
}

const (
	killScoreBase      = -1000.0 // Any killable target outranks any survivor
	vulnerabilityBonus = 10.0

	cautiousAllyHealRatio = 0.5
	cautiousWeakRatio     = 0.5
	cautiousSelfHealRatio = 0.75
	moderateAllyHealRatio = 0.3
	moderateSelfHealRatio = 0.4
)

// ScoreTarget rates a potential victim for the attacker; lower is better.
// Killable targets always score below survivors and prefer the hardest hitter.
func ScoreTarget(attacker, target *entity.Unit) float64 {
	if CanKill(attacker, target) {
		return killScoreBase - float64(target.Card.Attack)
	}
	score := float64(target.HP + target.Card.Defense - target.Card.Attack)
	if target.WeakTo(attacker.Card.AttackType) {
		score -= vulnerabilityBonus
	}
	return score
}

// BestTarget picks the living foe with the lowest score, first in roster
// order on ties. Returns nil when every foe is dead.
func BestTarget(attacker *entity.Unit, foes entity.Roster) *entity.Unit {
	var best *entity.Unit
	bestScore := math.Inf(1)
	for _, foe := range foes {
		if !foe.IsAlive() {
			continue
		}
		if score := ScoreTarget(attacker, foe); score < bestScore {
			best, bestScore = foe, score
		}
	}
	return best
}

// rule is one entry in an archetype's decision table.
type rule struct {
	name  string
	apply func(t Turn) (Decision, bool)
}

var (
	aggressiveRules = []rule{
		{"attack", attackBest},
	}

	cautiousRules = []rule{
		{"advantage", advantageousAttack},
		{"guard-threatened-ally", guardThreatenedAlly},
		{"heal-wounded-ally", healAllyBelow(cautiousAllyHealRatio)},
		{"brace-lethal", braceAgainstLethal},
		{"brace-weakness", braceAgainstWeakness},
		{"heal-self", healSelfBelow(cautiousSelfHealRatio)},
		{"attack", attackBest},
	}

	moderateRules = []rule{
		{"finish-off", finishOff},
		{"brace-lethal", braceUnlessTrade},
		{"heal-wounded-ally", healAllyBelow(moderateAllyHealRatio)},
		{"heal-self", healSelfBelow(moderateSelfHealRatio)},
		{"attack", attackBest},
	}
)

func rulesFor(a gamedata.Archetype) []rule {
	switch a {
	case gamedata.Cautious:
		return cautiousRules
	case gamedata.Moderate:
		return moderateRules
	default:
		return aggressiveRules
	}
}

// Decide walks the actor's archetype table and returns the first match.
func Decide(t Turn) Decision {
	for _, r := range rulesFor(t.Actor.Archetype()) {
		if d, ok := r.apply(t); ok {
			d.Reason = r.name
			return d
		}
	}
	return Decision{Action: ActionAttack, Target: BestTarget(t.Actor, t.Foes), Reason: "fallback"}
}

// ============================================================================
// Rules
// ============================================================================

func attackBest(t Turn) (Decision, bool) {
	return Decision{Action: ActionAttack, Target: BestTarget(t.Actor, t.Foes)}, true
}

// advantageousAttack fires when the actor is untouched, outnumbers the
// foes and has nothing to fear from the next foe to act.
func advantageousAttack(t Turn) (Decision, bool) {
	if !t.Actor.IsFullHealth() || t.Allies.AliveCount() <= t.Foes.AliveCount() {
		return Decision{}, false
	}
	if t.NextFoe != nil && RawDamage(t.NextFoe, t.Actor) > 0 && !t.Actor.Resists(t.NextFoe.Card.AttackType) {
		return Decision{}, false
	}
	target := BestTarget(t.Actor, t.Foes)
	if target == nil {
		return Decision{}, false
	}
	return Decision{Action: ActionAttack, Target: target}, true
}

func finishOff(t Turn) (Decision, bool) {
	target := BestTarget(t.Actor, t.Foes)
	if target != nil && CanKill(t.Actor, target) {
		return Decision{Action: ActionAttack, Target: target}, true
	}
	return Decision{}, false
}

// guardThreatenedAlly protects the weakest ally the next foe could kill.
func guardThreatenedAlly(t Turn) (Decision, bool) {
	if t.NextFoe == nil || !t.Actor.DefenseMove().TargetsAlly() {
		return Decision{}, false
	}
	var ward *entity.Unit
	for _, ally := range t.Allies {
		if ally == t.Actor || !CanKill(t.NextFoe, ally) {
			continue
		}
		if ward == nil || ally.HP < ward.HP {
			ward = ally
		}
	}
	if ward == nil {
		return Decision{}, false
	}
	return Decision{Action: ActionDefend, Target: ward}, true
}

func healAllyBelow(ratio float64) func(Turn) (Decision, bool) {
	return func(t Turn) (Decision, bool) {
		if t.Actor.DefenseMove() != gamedata.DefenseHeal {
			return Decision{}, false
		}
		var patient *entity.Unit
		for _, ally := range t.Allies {
			if ally == t.Actor || !ally.IsAlive() || ally.HealthRatio() >= ratio {
				continue
			}
			if patient == nil || ally.HealthRatio() < patient.HealthRatio() {
				patient = ally
			}
		}
		if patient == nil {
			return Decision{}, false
		}
		return Decision{Action: ActionDefend, Target: patient}, true
	}
}

func healSelfBelow(ratio float64) func(Turn) (Decision, bool) {
	return func(t Turn) (Decision, bool) {
		if !t.Actor.DefenseMove().IsHeal() || t.Actor.HealthRatio() >= ratio {
			return Decision{}, false
		}
		return Decision{Action: ActionDefend, Target: t.Actor}, true
	}
}

func braceAgainstLethal(t Turn) (Decision, bool) {
	if t.NextFoe == nil || !CanKill(t.NextFoe, t.Actor) {
		return Decision{}, false
	}
	return selfProtect(t)
}

func braceAgainstWeakness(t Turn) (Decision, bool) {
	if t.NextFoe == nil || !t.Actor.WeakTo(t.NextFoe.Card.AttackType) || t.Actor.HealthRatio() >= cautiousWeakRatio {
		return Decision{}, false
	}
	return selfProtect(t)
}

// braceUnlessTrade defends against a lethal next foe only when the actor
// cannot remove that foe first.
func braceUnlessTrade(t Turn) (Decision, bool) {
	if t.NextFoe == nil || !CanKill(t.NextFoe, t.Actor) || CanKill(t.Actor, t.NextFoe) {
		return Decision{}, false
	}
	return selfProtect(t)
}

// selfProtect uses the actor's move on itself when that move would help.
func selfProtect(t Turn) (Decision, bool) {
	move := t.Actor.DefenseMove()
	switch {
	case move.IsShield():
		return Decision{Action: ActionDefend, Target: t.Actor}, true
	case move.IsHeal() && !t.Actor.IsFullHealth():
		return Decision{Action: ActionDefend, Target: t.Actor}, true
	default:
		return Decision{}, false
	}
}
