// Package profile holds the data model for hierarchical profiling data:
// the call graph (a tree, possibly with shared subtrees, i.e. a DAG) and
// the metric table addressed by composite row keys.
//
// The package is intentionally small: it stores what a profiler already
// measured and answers lookups. All rendering lives in pkg/render.
package profile

import "slices"

// Node is one vertex of a profiling call graph.
//
// Nodes are identified by a stable numeric id, used both for
// deterministic ordering and as a map key. A node may be reachable from
// multiple parents (shared subtree), so the structure is a DAG rather
// than a strict tree.
type Node struct {
	ID       int
	Depth    int // distance from the root set, computed on import
	Children []*Node
}

// Graph holds the root set of a profiling call graph.
type Graph struct {
	Roots []*Node
}

// Nodes returns every node reachable from the root set, each exactly
// once, in ascending id order.
func (g *Graph) Nodes() []*Node {
	if g == nil {
		return nil
	}
	seen := make(map[int]*Node)
	var walk func(n *Node)
	walk = func(n *Node) {
		if _, ok := seen[n.ID]; ok {
			return
		}
		seen[n.ID] = n
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range g.Roots {
		walk(r)
	}

	out := make([]*Node, 0, len(seen))
	for _, n := range seen {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *Node) int { return a.ID - b.ID })
	return out
}

// ComputeDepths assigns each node its distance from the root set via
// breadth-first traversal. Shared nodes keep the depth of their first
// (shallowest) visit. Import calls this automatically.
func (g *Graph) ComputeDepths() {
	if g == nil {
		return
	}
	seen := make(map[int]struct{})
	queue := make([]*Node, 0, len(g.Roots))
	for _, r := range g.Roots {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		r.Depth = 0
		queue = append(queue, r)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range n.Children {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			c.Depth = n.Depth + 1
			queue = append(queue, c)
		}
	}
}

// SortByID returns a copy of nodes sorted by ascending id.
// Rendering uses it for both the root set and child lists so output is
// deterministic regardless of input order.
func SortByID(nodes []*Node) []*Node {
	out := slices.Clone(nodes)
	slices.SortFunc(out, func(a, b *Node) int { return a.ID - b.ID })
	return out
}
