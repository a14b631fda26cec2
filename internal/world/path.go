package world

import "github.com/zyedidia/generic/mapset"

// ShortestPath finds a fewest-edges path from one node to another using
// breadth-first search, never entering a node in obstacles.
// The returned path includes both endpoints; nil means no path exists.
func (g *Graph) ShortestPath(from, to int, obstacles mapset.Set[int]) []*Node {
	start, end := g.Node(from), g.Node(to)
	if start == nil || end == nil {
		return nil
	}
	if from == to {
		return []*Node{start}
	}

	parent := make(map[int]int)
	visited := mapset.New[int]()
	visited.Put(from)
	queue := []int{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == to {
			return g.tracePath(parent, from, to)
		}

		for _, n := range g.Neighbors(current) {
			if visited.Has(n.ID) || blocked(obstacles, n.ID) {
				continue
			}
			visited.Put(n.ID)
			parent[n.ID] = current
			queue = append(queue, n.ID)
		}
	}
	return nil
}

// Reachable returns the IDs reachable from id without entering obstacles.
func (g *Graph) Reachable(id int, obstacles mapset.Set[int]) mapset.Set[int] {
	reachable := mapset.New[int]()
	if g.Node(id) == nil {
		return reachable
	}
	queue := []int{id}
	reachable.Put(id)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(current) {
			if reachable.Has(n.ID) || blocked(obstacles, n.ID) {
				continue
			}
			reachable.Put(n.ID)
			queue = append(queue, n.ID)
		}
	}
	return reachable
}

// IsConnected reports whether every node is reachable from every other.
func (g *Graph) IsConnected() bool {
	if len(g.Nodes) == 0 {
		return true
	}
	return g.Reachable(0, mapset.New[int]()).Size() == len(g.Nodes)
}

func (g *Graph) tracePath(parent map[int]int, from, to int) []*Node {
	var reversed []*Node
	for id := to; ; id = parent[id] {
		reversed = append(reversed, g.Nodes[id])
		if id == from {
			break
		}
	}
	path := make([]*Node, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path
}

// blocked tolerates a zero-value set, which has no backing map.
func blocked(obstacles mapset.Set[int], id int) bool {
	return obstacles.Size() > 0 && obstacles.Has(id)
}
