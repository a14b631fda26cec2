package world

import "math"

// Tier is the difficulty bucket of a battle node.
type Tier int

const (
	TierWeak Tier = iota
	TierMedium
	TierStrong
)

// String returns a human-readable tier name.
func (t Tier) String() string {
	switch t {
	case TierWeak:
		return "weak"
	case TierMedium:
		return "medium"
	case TierStrong:
		return "strong"
	default:
		return "unknown"
	}
}

// Node is a map cell. Role flags are set once by the generator; the visit
// and cleared flags change as a run progresses.
type Node struct {
	ID   int
	X, Y float64

	IsStart  bool
	IsFinish bool
	IsSeed   bool // Territory starts here
	IsShop   bool
	IsBattle bool

	// Battle nodes only
	Tier    Tier
	Enemies []int // Catalog indices of the opposing roster
	Cleared bool

	Visited          bool // Player has stood here
	VisitedWhileHeld bool // Player entered while the node was held territory
}

// Distance returns the Euclidean distance between two nodes.
func Distance(a, b *Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// NeedsBattle reports whether entering the node starts a fight.
func (n *Node) NeedsBattle() bool {
	return n.IsBattle && !n.Cleared && len(n.Enemies) > 0
}
