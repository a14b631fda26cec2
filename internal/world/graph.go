// Package world provides the map graph and its procedural generation.
package world

import (
	"github.com/zyedidia/generic/mapset"
)

// Edge is an undirected connection stored as an ordered pair.
type Edge struct {
	From, To int
}

// Graph is an ordered collection of nodes plus undirected edges.
// Node IDs equal their index in Nodes.
type Graph struct {
	Nodes []*Node
	Edges []Edge

	adjacency map[int]mapset.Set[int]
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make([]*Node, 0),
		Edges:     make([]Edge, 0),
		adjacency: make(map[int]mapset.Set[int]),
	}
}

// AddNode appends a node at the given position and returns it.
func (g *Graph) AddNode(x, y float64) *Node {
	n := &Node{ID: len(g.Nodes), X: x, Y: y}
	g.Nodes = append(g.Nodes, n)
	g.adjacency[n.ID] = mapset.New[int]()
	return n
}

// AddEdge connects two nodes. Self-loops, unknown IDs and edges that already
// exist in either orientation are ignored. Returns true if an edge was added.
func (g *Graph) AddEdge(from, to int) bool {
	if from == to || g.Node(from) == nil || g.Node(to) == nil || g.Adjacent(from, to) {
		return false
	}
	g.Edges = append(g.Edges, Edge{From: from, To: to})
	g.adjacency[from].Put(to)
	g.adjacency[to].Put(from)
	return true
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id int) *Node {
	if id < 0 || id >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[id]
}

// Contains reports whether n is a node of this graph.
func (g *Graph) Contains(n *Node) bool {
	return n != nil && g.Node(n.ID) == n
}

// Adjacent reports whether an edge joins a and b in either orientation.
func (g *Graph) Adjacent(a, b int) bool {
	set, ok := g.adjacency[a]
	return ok && set.Has(b)
}

// Neighbors returns the nodes adjacent to id, in node order.
func (g *Graph) Neighbors(id int) []*Node {
	set, ok := g.adjacency[id]
	if !ok {
		return nil
	}
	neighbors := make([]*Node, 0, set.Size())
	for _, n := range g.Nodes {
		if set.Has(n.ID) {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// Degree returns the number of edges touching id.
func (g *Graph) Degree(id int) int {
	if set, ok := g.adjacency[id]; ok {
		return set.Size()
	}
	return 0
}

// Start returns the player start node, or nil.
func (g *Graph) Start() *Node { return g.find(func(n *Node) bool { return n.IsStart }) }

// Finish returns the goal node, or nil.
func (g *Graph) Finish() *Node { return g.find(func(n *Node) bool { return n.IsFinish }) }

// Seed returns the territory seed node, or nil.
func (g *Graph) Seed() *Node { return g.find(func(n *Node) bool { return n.IsSeed }) }

// Shop returns the shop node, or nil.
func (g *Graph) Shop() *Node { return g.find(func(n *Node) bool { return n.IsShop }) }

// BattleNodes returns every battle node in node order.
func (g *Graph) BattleNodes() []*Node {
	var nodes []*Node
	for _, n := range g.Nodes {
		if n.IsBattle {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (g *Graph) find(match func(*Node) bool) *Node {
	for _, n := range g.Nodes {
		if match(n) {
			return n
		}
	}
	return nil
}
