package gamedata

import (
	"fmt"
	"strings"
)

// DamageType is the element of an attack. Cards list the types they resist
// and the types they are weak to.
type DamageType int

const (
	DamagePhysical DamageType = iota
	DamageMagical
	DamageFire
	DamageWater
	DamageAir
	DamageEarth
	DamageLightning
	DamageLight
	DamageDark
)

var damageTypeNames = []string{
	"Physical", "Magical", "Fire", "Water", "Air", "Earth", "Lightning", "Light", "Dark",
}

// String returns the damage type name as it appears in card data.
func (d DamageType) String() string {
	return enumName(damageTypeNames, int(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d DamageType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case-insensitive.
func (d *DamageType) UnmarshalText(text []byte) error {
	i, err := parseEnum("damage type", damageTypeNames, string(text))
	if err != nil {
		return err
	}
	*d = DamageType(i)
	return nil
}

// Archetype is a card's behavioral category. It drives opponent decisions
// and breaks initiative ties (lower priority acts first).
type Archetype int

const (
	Aggressive Archetype = iota
	Moderate
	Cautious
)

var archetypeNames = []string{"Aggressive", "Moderate", "Cautious"}

// String returns the archetype name.
func (a Archetype) String() string {
	return enumName(archetypeNames, int(a))
}

// Priority returns the initiative tie-break rank.
func (a Archetype) Priority() int {
	return int(a)
}

// MarshalText implements encoding.TextMarshaler.
func (a Archetype) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case-insensitive.
func (a *Archetype) UnmarshalText(text []byte) error {
	i, err := parseEnum("archetype", archetypeNames, string(text))
	if err != nil {
		return err
	}
	*a = Archetype(i)
	return nil
}

// DefenseMove is the non-attack action a card can take instead of attacking.
type DefenseMove int

const (
	DefenseNone DefenseMove = iota
	DefenseSelfShield
	DefenseShield
	DefenseSelfHeal
	DefenseHeal
	// DefenseStasis is accepted in card data but has no effect.
	DefenseStasis
)

var defenseMoveNames = []string{"None", "SelfShield", "Shield", "SelfHeal", "Heal", "Stasis"}

// String returns the defensive move name.
func (m DefenseMove) String() string {
	return enumName(defenseMoveNames, int(m))
}

// TargetsAlly reports whether the move is applied to a chosen ally.
func (m DefenseMove) TargetsAlly() bool {
	return m == DefenseShield || m == DefenseHeal
}

// IsHeal reports whether the move restores health.
func (m DefenseMove) IsHeal() bool {
	return m == DefenseHeal || m == DefenseSelfHeal
}

// IsShield reports whether the move adds to a shield pool.
func (m DefenseMove) IsShield() bool {
	return m == DefenseShield || m == DefenseSelfShield
}

// HasEffect reports whether using the move changes anything.
func (m DefenseMove) HasEffect() bool {
	return m.IsHeal() || m.IsShield()
}

// MarshalText implements encoding.TextMarshaler.
func (m DefenseMove) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case-insensitive.
func (m *DefenseMove) UnmarshalText(text []byte) error {
	i, err := parseEnum("defence move", defenseMoveNames, string(text))
	if err != nil {
		return err
	}
	*m = DefenseMove(i)
	return nil
}

// Status is the combat condition of a card copy.
type Status int

const (
	StatusAlive Status = iota
	StatusDead
	StatusStunned
	StatusStasis
)

var statusNames = []string{"Alive", "Dead", "Stunned", "Stasis"}

// String returns the status name.
func (s Status) String() string {
	return enumName(statusNames, int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case-insensitive.
func (s *Status) UnmarshalText(text []byte) error {
	i, err := parseEnum("status", statusNames, string(text))
	if err != nil {
		return err
	}
	*s = Status(i)
	return nil
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "Unknown"
	}
	return names[i]
}

func parseEnum(kind string, names []string, value string) (int, error) {
	value = strings.TrimSpace(value)
	for i, name := range names {
		if strings.EqualFold(name, value) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, value)
}
