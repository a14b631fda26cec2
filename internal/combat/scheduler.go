package combat

import (
	"math"
	"sort"

	"github.com/samdwyer/cardrun/internal/entity"
)

// Side identifies which roster a unit fights for.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideOpponent:
		return "opponent"
	default:
		return "unknown"
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// Scheduler orders turns by initiative countdown. Each unit waits
// 1000/speed time units between turns; time skips straight to the
// next unit that is due.
type Scheduler struct {
	players   entity.Roster
	opponents entity.Roster
}

// NewScheduler arms every unit's timer and returns the scheduler.
func NewScheduler(players, opponents entity.Roster) *Scheduler {
	s := &Scheduler{players: players, opponents: opponents}
	for _, u := range s.units() {
		u.ResetTimer()
	}
	return s
}

type slot struct {
	unit *entity.Unit
	side Side
}

func (s *Scheduler) units() []*entity.Unit {
	all := make([]*entity.Unit, 0, len(s.players)+len(s.opponents))
	all = append(all, s.players...)
	return append(all, s.opponents...)
}

func (s *Scheduler) living() []slot {
	var slots []slot
	for _, u := range s.players {
		if u.IsAlive() {
			slots = append(slots, slot{unit: u, side: SidePlayer})
		}
	}
	for _, u := range s.opponents {
		if u.IsAlive() {
			slots = append(slots, slot{unit: u, side: SideOpponent})
		}
	}
	return slots
}

// Next advances time until at least one living unit is due and returns the
// highest-priority due unit. Returns nil when nobody is alive.
func (s *Scheduler) Next() (*entity.Unit, Side) {
	slots := s.living()
	if len(slots) == 0 {
		return nil, SidePlayer
	}

	due := dueSlots(slots)
	if len(due) == 0 {
		skip := math.Inf(1)
		for _, sl := range slots {
			if t := sl.unit.TimeToNextTurn; t > 0 && t < skip {
				skip = t
			}
		}
		for _, sl := range slots {
			sl.unit.TimeToNextTurn -= skip
		}
		due = dueSlots(slots)
	}

	sortByPriority(due)
	return due[0].unit, due[0].side
}

// Finish restarts the actor's countdown after its turn.
func (s *Scheduler) Finish(u *entity.Unit) {
	u.ResetTimer()
}

// PeekNext returns the living unit from roster that will act soonest,
// without advancing time. Returns nil when the roster is wiped out.
func PeekNext(roster entity.Roster, side Side) *entity.Unit {
	var candidates []slot
	for _, u := range roster {
		if u.IsAlive() {
			candidates = append(candidates, slot{unit: u, side: side})
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].unit, candidates[j].unit
		if a.TimeToNextTurn != b.TimeToNextTurn {
			return a.TimeToNextTurn < b.TimeToNextTurn
		}
		return outranks(candidates[i], candidates[j])
	})
	return candidates[0].unit
}

func dueSlots(slots []slot) []slot {
	var due []slot
	for _, sl := range slots {
		if sl.unit.TimeToNextTurn <= 0 {
			due = append(due, sl)
		}
	}
	return due
}

func sortByPriority(slots []slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return outranks(slots[i], slots[j])
	})
}

// outranks breaks simultaneous turns: faster first, then by archetype
// (aggressive, moderate, cautious), then stronger card, then player side.
func outranks(a, b slot) bool {
	if a.unit.Speed() != b.unit.Speed() {
		return a.unit.Speed() > b.unit.Speed()
	}
	pa, pb := a.unit.Archetype().Priority(), b.unit.Archetype().Priority()
	if pa != pb {
		return pa < pb
	}
	if a.unit.Power() != b.unit.Power() {
		return a.unit.Power() > b.unit.Power()
	}
	return a.side == SidePlayer && b.side == SideOpponent
}
