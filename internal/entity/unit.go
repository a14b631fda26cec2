// Package entity provides the combat units built from card templates.
package entity

import "github.com/samdwyer/cardrun/internal/gamedata"

// InitiativeScale is divided by a unit's speed to get its turn interval.
const InitiativeScale = 1000.0

// Unit is an independent, mutable copy of a card template.
// Nothing done to a unit in combat reaches the catalog or other copies.
type Unit struct {
	Card gamedata.CardDef // Private copy of the template (upgrades already applied)

	HP             int
	Shield         int             // Temporary absorption pool, cleared at the start of the unit's turn
	Status         gamedata.Status // Alive, Dead, Stunned or Stasis
	TimeToNextTurn float64         // Initiative countdown, only meaningful during combat
}

// NewUnit creates a full-health copy of a card template.
func NewUnit(def *gamedata.CardDef) *Unit {
	return &Unit{
		Card:   def.Clone(),
		HP:     def.MaxHP,
		Status: gamedata.StatusAlive,
	}
}

// Name returns the card name.
func (u *Unit) Name() string { return u.Card.Name }

// MaxHP returns maximum health.
func (u *Unit) MaxHP() int { return u.Card.MaxHP }

// Speed returns the speed stat.
func (u *Unit) Speed() int { return u.Card.Speed }

// Power returns the card's power rating.
func (u *Unit) Power() int { return u.Card.Power }

// Archetype returns the behavioral archetype.
func (u *Unit) Archetype() gamedata.Archetype { return u.Card.Archetype }

// DefenseMove returns the defensive move variant.
func (u *Unit) DefenseMove() gamedata.DefenseMove { return u.Card.DefenseMove }

// IsAlive returns true unless the unit has been killed.
func (u *Unit) IsAlive() bool {
	return u.Status != gamedata.StatusDead && u.HP > 0
}

// CanAct returns true if the unit is alive and not stunned or in stasis.
func (u *Unit) CanAct() bool {
	return u.IsAlive() && u.Status == gamedata.StatusAlive
}

// IsFullHealth returns true when health is at maximum.
func (u *Unit) IsFullHealth() bool {
	return u.HP >= u.Card.MaxHP
}

// HealthRatio returns current health as a fraction of maximum.
func (u *Unit) HealthRatio() float64 {
	if u.Card.MaxHP <= 0 {
		return 0
	}
	return float64(u.HP) / float64(u.Card.MaxHP)
}

// TakeDamage applies damage, draining the shield before health.
// Returns the amount the shield absorbed and the health actually lost.
// Health never drops below 0; a unit brought to 0 is marked Dead.
func (u *Unit) TakeDamage(amount int) (absorbed, lost int) {
	if amount <= 0 || !u.IsAlive() {
		return 0, 0
	}

	absorbed = min(u.Shield, amount)
	u.Shield -= absorbed

	lost = min(amount-absorbed, u.HP)
	u.HP -= lost
	if u.HP <= 0 {
		u.HP = 0
		u.Status = gamedata.StatusDead
	}
	return absorbed, lost
}

// Heal restores health up to maximum and returns the amount restored.
// Dead units cannot be healed.
func (u *Unit) Heal(amount int) int {
	if amount <= 0 || !u.IsAlive() {
		return 0
	}
	actual := min(amount, u.Card.MaxHP-u.HP)
	if actual < 0 {
		actual = 0
	}
	u.HP += actual
	return actual
}

// AddShield grows the shield pool and returns the amount added.
func (u *Unit) AddShield(amount int) int {
	if amount <= 0 || !u.IsAlive() {
		return 0
	}
	u.Shield += amount
	return amount
}

// ResetShield clears the shield pool.
func (u *Unit) ResetShield() {
	u.Shield = 0
}

// TurnInterval returns the initiative delay between the unit's turns.
func (u *Unit) TurnInterval() float64 {
	if u.Card.Speed <= 0 {
		return InitiativeScale
	}
	return InitiativeScale / float64(u.Card.Speed)
}

// ResetTimer restarts the initiative countdown.
func (u *Unit) ResetTimer() {
	u.TimeToNextTurn = u.TurnInterval()
}

// Resists reports whether the unit lists t as a resistance.
func (u *Unit) Resists(t gamedata.DamageType) bool {
	return u.Card.ResistsType(t)
}

// WeakTo reports whether the unit lists t as a weakness.
func (u *Unit) WeakTo(t gamedata.DamageType) bool {
	return u.Card.WeakTo(t)
}
