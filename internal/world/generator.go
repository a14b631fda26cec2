package world

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/zyedidia/generic/mapset"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/cardrun/internal/gamedata"
	"github.com/samdwyer/cardrun/internal/telemetry"
)

const (
	// Candidate layout: odd cells of a gridWidth x gridHeight grid, cellSize apart.
	cellSize   = 80
	gridWidth  = 20
	gridHeight = 10

	// Node count is drawn from [DefaultMinNodes, DefaultMaxNodes).
	DefaultMinNodes = 25
	DefaultMaxNodes = 35

	// DefaultMaxAttempts bounds how many raw graphs are drawn before giving up.
	DefaultMaxAttempts = 1000

	baseLinks    = 2 // Nearest neighbors linked per node, plus 0 or 1 extra
	minRoleNodes = 5 // Below this no special roles are placed

	maxTeamSize     = 5
	strongThreshold = 8.0
	mediumThreshold = 5.0
	maxStrongNodes  = 2
	maxMediumNodes  = 10
)

// ErrGenerationFailed is returned when no valid graph was drawn within the attempt limit.
var ErrGenerationFailed = errors.New("graph generation failed")

// Generator builds validated map graphs. It owns its random source, so two
// generators seeded alike produce identical graphs.
type Generator struct {
	catalog     *gamedata.Catalog
	rng         *rand.Rand
	minNodes    int
	maxNodes    int
	maxAttempts int
	logger      zerolog.Logger
	metrics     *telemetry.Collector
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxAttempts caps the number of raw graphs drawn per Generate call.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithNodeRange overrides the node count range [min, max).
func WithNodeRange(lo, hi int) Option {
	return func(g *Generator) {
		if lo > 0 && hi > lo {
			g.minNodes, g.maxNodes = lo, hi
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *telemetry.Collector) Option {
	return func(g *Generator) { g.metrics = c }
}

// NewGenerator creates a generator drawing enemy rosters from catalog.
func NewGenerator(catalog *gamedata.Catalog, rng *rand.Rand, opts ...Option) *Generator {
	g := &Generator{
		catalog:     catalog,
		rng:         rng,
		minNodes:    DefaultMinNodes,
		maxNodes:    DefaultMaxNodes,
		maxAttempts: DefaultMaxAttempts,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate draws raw graphs until one lets the player reach the finish
// without crossing the territory seed or the shop. It never returns a
// partially built graph.
func (g *Generator) Generate(ctx context.Context) (*Graph, error) {
	tracer := telemetry.Tracer("world")
	ctx, span := tracer.Start(ctx, "graph.generate")
	defer span.End()

	startTime := time.Now()

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		graph := g.generateRaw()
		valid := IsValid(graph)
		g.metrics.ObserveGeneration(!valid)

		if !valid {
			g.logger.Debug().Int("attempt", attempt).Msg("graph rejected: finish unreachable")
			continue
		}

		span.SetAttributes(
			attribute.Int("graph.attempts", attempt),
			attribute.Int("graph.nodes", len(graph.Nodes)),
			attribute.Int("graph.edges", len(graph.Edges)),
			attribute.Int64("graph.generation_ms", time.Since(startTime).Milliseconds()),
		)
		g.logger.Debug().
			Int("attempt", attempt).
			Int("nodes", len(graph.Nodes)).
			Int("edges", len(graph.Edges)).
			Msg("graph generated")
		return graph, nil
	}

	span.SetAttributes(attribute.Int("graph.attempts", g.maxAttempts))
	return nil, fmt.Errorf("%w after %d attempts", ErrGenerationFailed, g.maxAttempts)
}

// IsValid reports whether the finish is reachable from the start while the
// territory seed and the shop are treated as impassable.
// A graph without those obstacles is always valid.
func IsValid(graph *Graph) bool {
	obstacles := mapset.New[int]()
	if seed := graph.Seed(); seed != nil {
		obstacles.Put(seed.ID)
	}
	if shop := graph.Shop(); shop != nil {
		obstacles.Put(shop.ID)
	}
	if obstacles.Size() == 0 {
		return true
	}

	start, finish := graph.Start(), graph.Finish()
	if start == nil || finish == nil {
		return false
	}
	return graph.ShortestPath(start.ID, finish.ID, obstacles) != nil
}

// generateRaw places nodes, links them, repairs connectivity and assigns roles.
func (g *Generator) generateRaw() *Graph {
	graph := NewGraph()

	type point struct{ x, y float64 }
	candidates := make([]point, 0, (gridWidth/2)*(gridHeight/2))
	for x := 1; x < gridWidth; x += 2 {
		for y := 1; y < gridHeight; y += 2 {
			candidates = append(candidates, point{float64(x * cellSize), float64(y * cellSize)})
		}
	}

	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	count := min(g.minNodes+g.rng.Intn(g.maxNodes-g.minNodes), len(candidates))
	for _, c := range candidates[:count] {
		graph.AddNode(c.x, c.y)
	}

	g.linkNearest(graph)
	ensureConnectivity(graph)
	g.placeRoles(graph)
	return graph
}

// linkNearest connects every node to its 2 or 3 nearest others.
func (g *Generator) linkNearest(graph *Graph) {
	for _, node := range graph.Nodes {
		others := make([]*Node, 0, len(graph.Nodes)-1)
		for _, other := range graph.Nodes {
			if other.ID != node.ID {
				others = append(others, other)
			}
		}
		sort.SliceStable(others, func(i, j int) bool {
			return Distance(node, others[i]) < Distance(node, others[j])
		})

		links := min(baseLinks+g.rng.Intn(2), len(others))
		for _, neighbor := range others[:links] {
			graph.AddEdge(node.ID, neighbor.ID)
		}
	}
}

// ensureConnectivity joins components by repeatedly adding the shortest edge
// between the connected set and a node outside it.
func ensureConnectivity(graph *Graph) {
	if len(graph.Nodes) < 2 {
		return
	}

	connected := graph.Reachable(graph.Nodes[0].ID, mapset.New[int]())
	for connected.Size() < len(graph.Nodes) {
		var from, to *Node
		best := 0.0
		for _, a := range graph.Nodes {
			if !connected.Has(a.ID) {
				continue
			}
			for _, b := range graph.Nodes {
				if connected.Has(b.ID) {
					continue
				}
				if d := Distance(a, b); from == nil || d < best {
					from, to, best = a, b, d
				}
			}
		}

		graph.AddEdge(from.ID, to.ID)
		graph.Reachable(to.ID, connected).Each(func(id int) {
			connected.Put(id)
		})
	}
}

// placeRoles assigns start, finish, seed, shop and battle nodes.
func (g *Generator) placeRoles(graph *Graph) {
	if len(graph.Nodes) < minRoleNodes {
		return
	}

	start := graph.Nodes[0]
	for _, n := range graph.Nodes[1:] {
		if n.X > start.X {
			start = n
		}
	}
	start.IsStart = true

	finish := graph.Nodes[0]
	for _, n := range graph.Nodes[1:] {
		if Distance(start, n) > Distance(start, finish) {
			finish = n
		}
	}
	finish.IsFinish = true

	if neighbors := graph.Neighbors(start.ID); len(neighbors) > 0 {
		neighbors[g.rng.Intn(len(neighbors))].IsSeed = true
	}

	var shopCandidates []*Node
	for _, n := range graph.Nodes {
		if !n.IsStart && !n.IsFinish && !n.IsSeed {
			shopCandidates = append(shopCandidates, n)
		}
	}
	if len(shopCandidates) > 0 {
		shopCandidates[g.rng.Intn(len(shopCandidates))].IsShop = true
	}

	strong, medium := 0, 0
	for _, n := range graph.Nodes {
		if n.IsStart || n.IsFinish || n.IsSeed || n.IsShop {
			continue
		}
		n.IsBattle = true
		n.Enemies = g.drawRoster()

		switch score := g.difficulty(n.Enemies); {
		case score >= strongThreshold && strong < maxStrongNodes:
			n.Tier = TierStrong
			strong++
		case score >= mediumThreshold && medium < maxMediumNodes:
			n.Tier = TierMedium
			medium++
		default:
			n.Tier = TierWeak
		}
	}
}

// drawRoster picks 1 to 5 catalog indices uniformly.
func (g *Generator) drawRoster() []int {
	if g.catalog == nil || g.catalog.Count() == 0 {
		return nil
	}
	size := 1 + g.rng.Intn(maxTeamSize)
	roster := make([]int, size)
	for i := range roster {
		roster[i] = g.catalog.RandomIndex(g.rng)
	}
	return roster
}

// difficulty scores a roster as (total power - size) / size.
func (g *Generator) difficulty(roster []int) float64 {
	if len(roster) == 0 {
		return 0
	}
	total := 0
	for _, idx := range roster {
		total += g.catalog.Power(idx)
	}
	return float64(total-len(roster)) / float64(len(roster))
}
