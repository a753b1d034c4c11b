package properties

import (
	"gonum.org/v1/gonum/graph"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// Transitivity is the global clustering coefficient of the undirected view:
// 3 x triangles / connected triples. A graph without triples has transitivity 0.
func Transitivity(g *network.ReactionNetwork) (float64, error) {
	if g.NumNodes() == 0 {
		return 0, models.InsufficientDataError{Statistic: "transitivity", Need: "at least 1 node", Have: 0}
	}
	return transitivity(g.Undirected(), g.NumNodes()), nil
}

// AverageClustering is the mean local clustering coefficient of the undirected view.
// Nodes with fewer than two neighbours contribute 0.
func AverageClustering(g *network.ReactionNetwork) (float64, error) {
	if g.NumNodes() == 0 {
		return 0, models.InsufficientDataError{Statistic: "average clustering", Need: "at least 1 node", Have: 0}
	}
	return averageClustering(g.Undirected(), g.NumNodes()), nil
}

// triples returns the closed and total neighbour pairs around node id
func triples(ug graph.Undirected, id int64) (closed, total int) {
	nbrs := graph.NodesOf(ug.From(id))
	d := len(nbrs)
	if d < 2 {
		return 0, 0
	}
	for i := 0; i < d; i++ {
		for j := i + 1; j < d; j++ {
			if ug.HasEdgeBetween(nbrs[i].ID(), nbrs[j].ID()) {
				closed++
			}
		}
	}
	return closed, d * (d - 1) / 2
}

func transitivity(ug graph.Undirected, n int) float64 {
	closed, total := 0, 0
	for id := 0; id < n; id++ {
		c, t := triples(ug, int64(id))
		closed += c
		total += t
	}
	if total == 0 {
		return 0
	}
	return float64(closed) / float64(total)
}

// averageClustering visits IDs in ascending order so repeated runs sum identically
func averageClustering(ug graph.Undirected, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for id := 0; id < n; id++ {
		c, t := triples(ug, int64(id))
		if t > 0 {
			sum += float64(c) / float64(t)
		}
	}
	return sum / float64(n)
}
