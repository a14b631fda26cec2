package gamedata

import (
	"slices"

	"github.com/gdamore/tcell/v2"
)

const (
	// DefaultShieldValue is the shield a card adds per use when its data omits one.
	DefaultShieldValue = 5
	// DefaultHealValue is the health a card restores per use when its data omits one.
	DefaultHealValue = 7
)

// CardDef is a combat-unit template loaded from JSON.
// Templates are read-only; battles and decks work on copies.
type CardDef struct {
	Name        string       `json:"name" yaml:"name" validate:"required"`
	MaxHP       int          `json:"maxHP" yaml:"maxHP" validate:"gt=0"`
	Speed       int          `json:"speed" yaml:"speed" validate:"gt=0"`
	Defense     int          `json:"defence" yaml:"defence" validate:"gte=0"`
	Resists     []DamageType `json:"defenceTypes" yaml:"defenceTypes"`
	Weaknesses  []DamageType `json:"defenceWeaknesses" yaml:"defenceWeaknesses"`
	Attack      int          `json:"ad" yaml:"ad" validate:"gte=0"`
	AttackType  DamageType   `json:"attackType" yaml:"attackType"`
	Strength    int          `json:"strength" yaml:"strength" validate:"gte=0"`
	DefenseMove DefenseMove  `json:"defenceMove" yaml:"defenceMove"`
	Perk        string       `json:"perkName,omitempty" yaml:"perkName,omitempty"`
	Archetype   Archetype    `json:"type" yaml:"type"`
	Power       int          `json:"power" yaml:"power" validate:"gte=1,lte=10"`
	ShieldValue int          `json:"shieldValue" yaml:"shieldValue" validate:"gte=0"`
	HealValue   int          `json:"healValue" yaml:"healValue" validate:"gte=0"`
	Color       string       `json:"color,omitempty" yaml:"color,omitempty" validate:"omitempty,hexcolor"`
	ImagePath   string       `json:"imagePath,omitempty" yaml:"imagePath,omitempty"`
}

// ResistsType reports whether the card lists t among its resistances.
func (c *CardDef) ResistsType(t DamageType) bool {
	return slices.Contains(c.Resists, t)
}

// WeakTo reports whether the card lists t among its weaknesses.
func (c *CardDef) WeakTo(t DamageType) bool {
	return slices.Contains(c.Weaknesses, t)
}

// Clone returns a deep copy of the template.
func (c CardDef) Clone() CardDef {
	c.Resists = slices.Clone(c.Resists)
	c.Weaknesses = slices.Clone(c.Weaknesses)
	return c
}

// GlyphRune returns the first letter of the name for map and battle rendering.
func (c *CardDef) GlyphRune() rune {
	for _, r := range c.Name {
		return r
	}
	return '?'
}

// TCellColor returns the card's display color, falling back to its attack type color.
func (c *CardDef) TCellColor() tcell.Color {
	if c.Color != "" {
		if color := tcell.GetColor(c.Color); color != tcell.ColorDefault {
			return color
		}
	}
	return c.AttackType.Color()
}

// applyDefaults fills values the data is allowed to omit.
func (c *CardDef) applyDefaults() {
	if c.ShieldValue == 0 {
		c.ShieldValue = DefaultShieldValue
	}
	if c.HealValue == 0 {
		c.HealValue = DefaultHealValue
	}
}

var damageTypeColors = map[DamageType]tcell.Color{
	DamagePhysical:  tcell.ColorSilver,
	DamageMagical:   tcell.ColorMediumPurple,
	DamageFire:      tcell.ColorOrangeRed,
	DamageWater:     tcell.ColorDodgerBlue,
	DamageAir:       tcell.ColorLightCyan,
	DamageEarth:     tcell.ColorSandyBrown,
	DamageLightning: tcell.ColorYellow,
	DamageLight:     tcell.ColorLightYellow,
	DamageDark:      tcell.ColorDarkMagenta,
}

// Color returns the rendering color associated with a damage type.
func (d DamageType) Color() tcell.Color {
	if color, ok := damageTypeColors[d]; ok {
		return color
	}
	return tcell.ColorWhite
}
