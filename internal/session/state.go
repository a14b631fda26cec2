// Package session holds the mutable record of one playthrough.
package session

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zyedidia/generic/mapset"

	"github.com/samdwyer/cardrun/internal/entity"
	"github.com/samdwyer/cardrun/internal/world"
)

// GoldPerPower is the reward per power point of each defeated opponent.
const GoldPerPower = 10

var (
	// ErrNilDestination is returned when a move has no destination.
	ErrNilDestination = errors.New("move destination is nil")
	// ErrNoStart is returned when a graph has no start node to place the player on.
	ErrNoStart = errors.New("graph has no start node")
)

// Stats are the run statistics shown at the end of a run.
type Stats struct {
	NodesVisited    int
	EnemiesDefeated int
	GoldEarned      int
	StrongestEnemy  string // Name of the highest-power opponent defeated, empty if none
	StrongestPower  int
	BattlesWon      int
}

// State is one playthrough: the graph, the player's position, the move
// counter, the held territory and the statistics. It is not safe for
// concurrent use; one owner drives it at a time.
type State struct {
	RunID  uuid.UUID
	Graph  *world.Graph
	Player *world.Node
	Moves  int
	Gold   int
	Stats  Stats

	held      mapset.Set[int]
	heldOrder []int
	logger    zerolog.Logger
}

// Option configures a State.
type Option func(*State)

// WithLogger attaches a logger; the run ID is added to every entry.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *State) { s.logger = logger }
}

// WithGold sets the starting gold balance.
func WithGold(gold int) Option {
	return func(s *State) {
		if gold > 0 {
			s.Gold = gold
		}
	}
}

// NewState places the player on the start node and seeds the territory.
func NewState(graph *world.Graph, opts ...Option) (*State, error) {
	if graph == nil || graph.Start() == nil {
		return nil, ErrNoStart
	}

	s := &State{
		RunID:  uuid.New(),
		Graph:  graph,
		Player: graph.Start(),
		held:   mapset.New[int](),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("run_id", s.RunID.String()).Logger()

	if seed := graph.Seed(); seed != nil {
		s.addHeld(seed.ID)
	}
	return s, nil
}

// MovePlayer moves the player to an adjacent node.
// A non-adjacent destination returns false and changes nothing.
// A nil destination returns ErrNilDestination.
func (s *State) MovePlayer(dest *world.Node) (bool, error) {
	if dest == nil {
		return false, ErrNilDestination
	}
	if !s.Graph.Contains(dest) || !s.Graph.Adjacent(s.Player.ID, dest.ID) {
		return false, nil
	}

	s.Player = dest
	s.Moves++
	if !dest.Visited {
		s.Stats.NodesVisited++
	}
	dest.Visited = true
	if s.held.Has(dest.ID) {
		dest.VisitedWhileHeld = true
	}

	s.logger.Debug().Int("node_id", dest.ID).Int("moves", s.Moves).Msg("player moved")
	return true, nil
}

// AvailableMoves returns every node adjacent to the player, held or not.
func (s *State) AvailableMoves() []*world.Node {
	return s.Graph.Neighbors(s.Player.ID)
}

// ExpandTerritory adds a node to the held set. Re-infested battle nodes lose
// their cleared flag. The shop can never be held. Returns true if the node
// was newly added.
func (s *State) ExpandTerritory(node *world.Node) bool {
	if node == nil || !s.Graph.Contains(node) || node.IsShop {
		return false
	}
	if node.IsBattle && node.Cleared {
		node.Cleared = false
	}
	if s.held.Has(node.ID) {
		return false
	}

	s.addHeld(node.ID)
	s.logger.Info().Int("node_id", node.ID).Int("held", len(s.heldOrder)).Msg("territory expanded")
	return true
}

// IsHeld reports whether the node ID is held territory.
func (s *State) IsHeld(id int) bool {
	return s.held.Has(id)
}

// Held returns the held node IDs in the order they were taken.
func (s *State) Held() []int {
	out := make([]int, len(s.heldOrder))
	copy(out, s.heldOrder)
	return out
}

// HeldCount returns the size of the held territory.
func (s *State) HeldCount() int {
	return len(s.heldOrder)
}

// PlayerInTerritory reports whether the player stands on held ground.
func (s *State) PlayerInTerritory() bool {
	return s.held.Has(s.Player.ID)
}

// AtFinish reports whether the player has reached the goal.
func (s *State) AtFinish() bool {
	return s.Player.IsFinish
}

// RecordBattle folds a battle result into the state. A win clears the node
// and pays GoldPerPower for every power point of each defeated opponent.
func (s *State) RecordBattle(node *world.Node, won bool, defeated []*entity.Unit) {
	if !won {
		return
	}
	if node != nil {
		node.Cleared = true
	}

	s.Stats.BattlesWon++
	for _, u := range defeated {
		s.Stats.EnemiesDefeated++
		reward := u.Power() * GoldPerPower
		s.Stats.GoldEarned += reward
		s.Gold += reward
		if u.Power() > s.Stats.StrongestPower {
			s.Stats.StrongestPower = u.Power()
			s.Stats.StrongestEnemy = u.Name()
		}
	}
}

// SpendGold deducts amount if the balance covers it.
func (s *State) SpendGold(amount int) bool {
	if amount < 0 || amount > s.Gold {
		return false
	}
	s.Gold -= amount
	return true
}

// Logger returns the run-scoped logger.
func (s *State) Logger() *zerolog.Logger {
	return &s.logger
}

func (s *State) addHeld(id int) {
	s.held.Put(id)
	s.heldOrder = append(s.heldOrder, id)
}
