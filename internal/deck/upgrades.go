package deck

import (
	"sort"

	"github.com/samdwyer/cardrun/internal/gamedata"
)

const (
	healthPerLevel  = 3
	attackPerLevel  = 1
	supportPerLevel = 1 // Shield and heal value

	baseUpgradeCost = 50
)

// Upgrades maps a deck slot to its upgrade level.
type Upgrades map[int]int

// Level returns the upgrade level of slot i, 0 if never upgraded.
func (u Upgrades) Level(i int) int {
	return u[i]
}

// NextCost returns the gold needed to raise slot i by one level.
func (u Upgrades) NextCost(i int) int {
	return UpgradeCost(u.Level(i))
}

// Raise increments slot i and returns the new level.
func (u Upgrades) Raise(i int) int {
	u[i]++
	return u[i]
}

// RemoveSlot drops slot i and shifts later slots down, mirroring Deck.Remove.
func (u Upgrades) RemoveSlot(i int) {
	slots := make([]int, 0, len(u))
	for slot := range u {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	delete(u, i)
	for _, slot := range slots {
		if slot > i {
			u[slot-1] = u[slot]
			delete(u, slot)
		}
	}
}

// Apply returns upgraded copies of every card in d. The deck is untouched.
func (u Upgrades) Apply(d Deck) []gamedata.CardDef {
	cards := make([]gamedata.CardDef, len(d))
	for i, card := range d {
		cards[i] = ApplyUpgrade(card, u.Level(i))
	}
	return cards
}

// UpgradeCost returns the price of going from level to level+1.
func UpgradeCost(level int) int {
	return baseUpgradeCost * (level + 1)
}

// ApplyUpgrade returns a copy of card improved by level upgrade levels.
func ApplyUpgrade(card gamedata.CardDef, level int) gamedata.CardDef {
	upgraded := card.Clone()
	if level <= 0 {
		return upgraded
	}
	upgraded.MaxHP += healthPerLevel * level
	upgraded.Attack += attackPerLevel * level
	upgraded.ShieldValue += supportPerLevel * level
	upgraded.HealValue += supportPerLevel * level
	return upgraded
}
