package network

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// The gonum views below collapse parallel reactions and drop self-loops,
// since gonum's simple graphs reject both. Path-based metrics are unaffected:
// a shortest path never uses a self-loop, and parallel edges add no new paths.

// Directed returns the collapsed directed view weighted by the smallest step count per pair
func (g *ReactionNetwork) Directed() *simple.WeightedDirectedGraph {
	dg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for i := range g.ids {
		dg.AddNode(simple.Node(int64(i)))
	}

	for _, r := range g.reactions {
		if r.From == r.To {
			continue
		}
		uid, vid := int64(r.From), int64(r.To)
		w := float64(r.Steps)
		if existing, ok := dg.Weight(uid, vid); ok && existing <= w {
			continue
		}
		dg.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(uid), T: simple.Node(vid), W: w})
	}
	return dg
}

// DirectedUnweighted returns the collapsed directed view with unit edges
func (g *ReactionNetwork) DirectedUnweighted() *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for i := range g.ids {
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, r := range g.reactions {
		if r.From == r.To || dg.HasEdgeFromTo(int64(r.From), int64(r.To)) {
			continue
		}
		dg.SetEdge(simple.Edge{F: simple.Node(int64(r.From)), T: simple.Node(int64(r.To))})
	}
	return dg
}

// Undirected returns the collapsed undirected view ignoring reaction direction
func (g *ReactionNetwork) Undirected() *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for i := range g.ids {
		ug.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.UndirectedEdges() {
		ug.SetEdge(simple.Edge{F: simple.Node(int64(e[0])), T: simple.Node(int64(e[1]))})
	}
	return ug
}

// UndirectedEdges returns the distinct undirected node pairs (lower index first)
// ordered by the first reaction that introduced them. Self-loops are omitted.
func (g *ReactionNetwork) UndirectedEdges() [][2]int {
	seen := make(map[[2]int]bool, len(g.reactions))
	edges := make([][2]int, 0, len(g.reactions))
	for _, r := range g.reactions {
		if r.From == r.To {
			continue
		}
		key := [2]int{r.From, r.To}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, key)
	}
	return edges
}

// NodeIndices converts gonum nodes back to node indices
func NodeIndices(nodes []graph.Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = int(n.ID())
	}
	return out
}

// GonumNodes converts node indices to gonum nodes
func GonumNodes(indices []int) []graph.Node {
	out := make([]graph.Node, len(indices))
	for i, idx := range indices {
		out[i] = simple.Node(int64(idx))
	}
	return out
}
