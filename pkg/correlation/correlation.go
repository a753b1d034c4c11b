package correlation

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/stat"

	"github.com/gilchrisn/reaction-network-analysis/pkg/degree"
	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// InOutResult is the Pearson correlation between in- and out-degree
type InOutResult struct {
	R        float64 `json:"r"`
	NumNodes int     `json:"num_nodes"`
}

// InOutCorrelation correlates the in-degree and out-degree of every molecule,
// counting parallel reactions. Needs two nodes and nonzero variance on both sides.
func InOutCorrelation(g *network.ReactionNetwork) (*InOutResult, error) {
	n := g.NumNodes()
	if n < 2 {
		return nil, models.InsufficientDataError{Statistic: "in/out degree correlation", Need: "at least 2 nodes", Have: n}
	}

	in := make([]float64, n)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		in[i] = float64(g.InDegree(i))
		out[i] = float64(g.OutDegree(i))
	}
	if stat.Variance(in, nil) == 0 || stat.Variance(out, nil) == 0 {
		return nil, models.InsufficientDataError{Statistic: "in/out degree correlation", Need: "nonzero degree variance", Have: n}
	}
	return &InOutResult{R: stat.Correlation(in, out, nil), NumNodes: n}, nil
}

// ConnectivityPoint is the average neighbour degree of the molecules with degree K
type ConnectivityPoint struct {
	K                int     `json:"k"`
	AverageNeighbour float64 `json:"average_neighbour_degree"`
	Nodes            int     `json:"nodes"`
}

// AverageDegreeConnectivity computes k_nn(k) on the collapsed directed view: for
// every source degree k, the target degrees of the neighbours of all molecules with
// degree k, summed and divided by k times their count. Neighbours are successors
// for an out source, predecessors for an in source and both for total.
// Molecules with source degree 0 are reported with k_nn 0.
func AverageDegreeConnectivity(g *network.ReactionNetwork, source, target degree.Kind) ([]ConnectivityPoint, error) {
	n := g.NumNodes()
	if n == 0 {
		return nil, models.InsufficientDataError{Statistic: "average degree connectivity", Need: "at least 1 node", Have: 0}
	}

	dg := g.DirectedUnweighted()
	sums := make(map[int]float64)
	norms := make(map[int]int)
	counts := make(map[int]int)
	for u := 0; u < n; u++ {
		nbrs := neighbours(dg, int64(u), source)
		k := len(nbrs)
		counts[k]++
		norms[k] += k
		for _, v := range nbrs {
			sums[k] += float64(viewDegree(dg, v.ID(), target))
		}
	}

	points := make([]ConnectivityPoint, 0, len(counts))
	for k, c := range counts {
		p := ConnectivityPoint{K: k, Nodes: c}
		if norms[k] > 0 {
			p.AverageNeighbour = sums[k] / float64(norms[k])
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].K < points[j].K })
	return points, nil
}

// Assortativity is the Pearson correlation over reactions of the source degree of
// the reactant and the target degree of the product, on the collapsed directed view.
func Assortativity(g *network.ReactionNetwork, source, target degree.Kind) (float64, error) {
	dg := g.DirectedUnweighted()
	xs := make([]float64, 0, g.NumEdges())
	ys := make([]float64, 0, g.NumEdges())
	for u := 0; u < g.NumNodes(); u++ {
		for _, v := range sortedNodes(dg.From(int64(u))) {
			xs = append(xs, float64(viewDegree(dg, int64(u), source)))
			ys = append(ys, float64(viewDegree(dg, v.ID(), target)))
		}
	}
	if len(xs) < 2 {
		return 0, models.InsufficientDataError{Statistic: "degree assortativity", Need: "at least 2 distinct reactions", Have: len(xs)}
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0, models.InsufficientDataError{Statistic: "degree assortativity", Need: "nonzero degree variance", Have: len(xs)}
	}
	return stat.Correlation(xs, ys, nil), nil
}

func neighbours(dg *simple.DirectedGraph, id int64, kind degree.Kind) []graph.Node {
	switch kind {
	case degree.In:
		return graph.NodesOf(dg.To(id))
	case degree.Out:
		return graph.NodesOf(dg.From(id))
	}
	return append(graph.NodesOf(dg.To(id)), graph.NodesOf(dg.From(id))...)
}

// sortedNodes orders an iterator by ID so float sums repeat exactly
func sortedNodes(it graph.Nodes) []graph.Node {
	nodes := graph.NodesOf(it)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return nodes
}

func viewDegree(dg *simple.DirectedGraph, id int64, kind degree.Kind) int {
	switch kind {
	case degree.In:
		return dg.To(id).Len()
	case degree.Out:
		return dg.From(id).Len()
	}
	return dg.To(id).Len() + dg.From(id).Len()
}
