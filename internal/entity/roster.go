package entity

import "github.com/samdwyer/cardrun/internal/gamedata"

// Roster is one side of a battle.
type Roster []*Unit

// NewRoster copies every template into a fresh unit.
func NewRoster(defs []gamedata.CardDef) Roster {
	roster := make(Roster, 0, len(defs))
	for i := range defs {
		roster = append(roster, NewUnit(&defs[i]))
	}
	return roster
}

// RosterFromCatalog builds units from catalog indices, skipping unknown ones.
func RosterFromCatalog(catalog *gamedata.Catalog, indices []int) Roster {
	roster := make(Roster, 0, len(indices))
	for _, idx := range indices {
		if def := catalog.Get(idx); def != nil {
			roster = append(roster, NewUnit(def))
		}
	}
	return roster
}

// Alive returns the living units in roster order.
func (r Roster) Alive() []*Unit {
	alive := make([]*Unit, 0, len(r))
	for _, u := range r {
		if u.IsAlive() {
			alive = append(alive, u)
		}
	}
	return alive
}

// AliveCount returns the number of living units.
func (r Roster) AliveCount() int {
	count := 0
	for _, u := range r {
		if u.IsAlive() {
			count++
		}
	}
	return count
}

// Dead returns the units left in Dead status.
func (r Roster) Dead() []*Unit {
	var dead []*Unit
	for _, u := range r {
		if u.Status == gamedata.StatusDead {
			dead = append(dead, u)
		}
	}
	return dead
}

// Contains reports whether u is a member of the roster.
func (r Roster) Contains(u *Unit) bool {
	for _, member := range r {
		if member == u {
			return true
		}
	}
	return false
}

// TotalPower sums the power rating of every unit.
func (r Roster) TotalPower() int {
	total := 0
	for _, u := range r {
		total += u.Power()
	}
	return total
}
