package properties

import (
	"context"
	"math/rand"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// swapCheckInterval is how many swap attempts run between context checks
const swapCheckInterval = 64

// undirectedFromEdges builds a simple undirected graph on nodes 0..n-1
func undirectedFromEdges(n int, edges [][2]int64) *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		ug.AddNode(simple.Node(int64(i)))
	}
	for _, e := range edges {
		ug.SetEdge(simple.Edge{F: simple.Node(e[0]), T: simple.Node(e[1])})
	}
	return ug
}

// randomReference rewires a copy of the graph with degree-preserving double edge
// swaps, rejecting any swap that disconnects it. It runs attempts swap attempts and
// returns false if ctx expired before they finished.
func randomReference(ctx context.Context, n int, edges [][2]int64, attempts int, rng *rand.Rand) (*simple.UndirectedGraph, bool) {
	work := make([][2]int64, len(edges))
	copy(work, edges)
	ug := undirectedFromEdges(n, work)
	if len(work) < 2 {
		return ug, true
	}

	for a := 0; a < attempts; a++ {
		if a%swapCheckInterval == 0 && ctx.Err() != nil {
			return nil, false
		}

		i := rng.Intn(len(work))
		j := rng.Intn(len(work))
		if i == j {
			continue
		}
		u, v := work[i][0], work[i][1]
		x, y := work[j][0], work[j][1]
		if rng.Intn(2) == 0 {
			x, y = y, x
		}
		// (u,v),(x,y) -> (u,y),(x,v)
		if u == y || x == v || u == x || v == y {
			continue
		}
		if ug.HasEdgeBetween(u, y) || ug.HasEdgeBetween(x, v) {
			continue
		}

		ug.RemoveEdge(u, v)
		ug.RemoveEdge(x, y)
		ug.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(y)})
		ug.SetEdge(simple.Edge{F: simple.Node(x), T: simple.Node(v)})

		// the rest of the graph stays attached as long as both old endpoints still meet
		if !topo.PathExistsIn(ug, simple.Node(u), simple.Node(v)) || !topo.PathExistsIn(ug, simple.Node(x), simple.Node(y)) {
			ug.RemoveEdge(u, y)
			ug.RemoveEdge(x, v)
			ug.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
			ug.SetEdge(simple.Edge{F: simple.Node(x), T: simple.Node(y)})
			continue
		}

		work[i] = [2]int64{u, y}
		work[j] = [2]int64{x, v}
	}
	return ug, true
}

// ringLattice places n nodes on a ring and links each node to its nearest
// neighbours, offset 1 first, until m edges exist. Degrees differ by at most 2
// when m is not a multiple of n.
func ringLattice(n, m int) *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		ug.AddNode(simple.Node(int64(i)))
	}
	if n < 2 {
		return ug
	}

	maxEdges := n * (n - 1) / 2
	if m > maxEdges {
		m = maxEdges
	}
	added := 0
	for offset := 1; added < m && offset < n; offset++ {
		for i := 0; i < n && added < m; i++ {
			j := (i + offset) % n
			if ug.HasEdgeBetween(int64(i), int64(j)) {
				continue
			}
			ug.SetEdge(simple.Edge{F: simple.Node(int64(i)), T: simple.Node(int64(j))})
			added++
		}
	}
	return ug
}
