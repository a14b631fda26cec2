// Package territory plans how the adversarial territory grows across the map.
package territory

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"github.com/zyedidia/generic/mapset"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/cardrun/internal/session"
	"github.com/samdwyer/cardrun/internal/telemetry"
	"github.com/samdwyer/cardrun/internal/world"
)

const (
	// DefaultMinMoves is the player move count before the territory starts growing.
	DefaultMinMoves = 2

	baseProfit     = 100
	visitedPenalty = 50
	proximityBonus = 50.0
)

// Phase is the planner's strategy for a single expansion.
type Phase int

const (
	// PhaseIdle means no expansion was planned.
	PhaseIdle Phase = iota
	// PhaseEncircle closes in on the finish until all its neighbors are held.
	PhaseEncircle
	// PhaseSaturate takes the most profitable frontier node once the finish is surrounded.
	PhaseSaturate
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseEncircle:
		return "encircle"
	case PhaseSaturate:
		return "saturate"
	default:
		return "unknown"
	}
}

// Planner is a one-step greedy planner. It keeps no state between calls;
// the held set in the session is the whole plan.
type Planner struct {
	minMoves int
	logger   zerolog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithMinMoves overrides the move threshold.
func WithMinMoves(n int) Option {
	return func(p *Planner) {
		if n >= 0 {
			p.minMoves = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// NewPlanner creates a planner.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{minMoves: DefaultMinMoves, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlanExpansion returns the next node to add to the held set, or nil.
// Nothing is planned before the move threshold, on a map without a finish,
// or when the frontier is empty. The state is not modified.
func (p *Planner) PlanExpansion(ctx context.Context, s *session.State) (*world.Node, Phase) {
	_, span := telemetry.Tracer("territory").Start(ctx, "territory.plan")
	defer span.End()

	node, phase := p.plan(s)

	span.SetAttributes(
		attribute.String("territory.phase", phase.String()),
		attribute.Int("territory.held", s.HeldCount()),
		attribute.Int("session.moves", s.Moves),
	)
	if node != nil {
		span.SetAttributes(attribute.Int("territory.target", node.ID))
		p.logger.Debug().Int("node_id", node.ID).Str("phase", phase.String()).Msg("expansion planned")
	}
	return node, phase
}

func (p *Planner) plan(s *session.State) (*world.Node, Phase) {
	if s.Moves < p.minMoves {
		return nil, PhaseIdle
	}
	finish := s.Graph.Finish()
	if finish == nil {
		return nil, PhaseIdle
	}
	frontier := Frontier(s)
	if len(frontier) == 0 {
		return nil, PhaseIdle
	}

	if !FinishSurrounded(s) {
		return encircle(s, finish, frontier), PhaseEncircle
	}
	return saturate(s, frontier), PhaseSaturate
}

// encircle takes the first frontier node touching the finish, otherwise the
// frontier node closest to it.
func encircle(s *session.State, finish *world.Node, frontier []*world.Node) *world.Node {
	for _, n := range frontier {
		if s.Graph.Adjacent(n.ID, finish.ID) {
			return n
		}
	}

	var best *world.Node
	bestDist := math.Inf(1)
	for _, n := range frontier {
		if d := world.Distance(n, finish); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// saturate takes the frontier node with the highest profit.
func saturate(s *session.State, frontier []*world.Node) *world.Node {
	var best *world.Node
	bestProfit := math.MinInt
	for _, n := range frontier {
		if profit := Profit(s, n); profit > bestProfit {
			best, bestProfit = n, profit
		}
	}
	return best
}

// Frontier returns the unheld, non-shop neighbors of held nodes, without
// duplicates, ordered by when their held neighbor was taken.
func Frontier(s *session.State) []*world.Node {
	seen := mapset.New[int]()
	var frontier []*world.Node
	for _, id := range s.Held() {
		for _, n := range s.Graph.Neighbors(id) {
			if s.IsHeld(n.ID) || n.IsShop || seen.Has(n.ID) {
				continue
			}
			seen.Put(n.ID)
			frontier = append(frontier, n)
		}
	}
	return frontier
}

// FinishSurrounded reports whether every neighbor of the finish is held.
// A map without a finish counts as surrounded.
func FinishSurrounded(s *session.State) bool {
	finish := s.Graph.Finish()
	if finish == nil {
		return true
	}
	for _, n := range s.Graph.Neighbors(finish.ID) {
		if !s.IsHeld(n.ID) {
			return false
		}
	}
	return true
}

// Profit scores a node for the saturation phase: nodes the player has not
// visited and nodes near the player score higher.
func Profit(s *session.State, n *world.Node) int {
	score := baseProfit
	if n.Visited {
		score -= visitedPenalty
	}
	score += int(proximityBonus - world.Distance(n, s.Player))
	return score
}
