package properties

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// LengthCount is one entry of the path length distribution
type LengthCount struct {
	Length      float64 `json:"length"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
}

// PathStats summarizes shortest paths over ordered molecule pairs
type PathStats struct {
	Weighted         bool          `json:"weighted"`
	Mean             float64       `json:"mean"`
	Diameter         float64       `json:"diameter"`
	ReachablePairs   int           `json:"reachable_pairs"`
	TotalPairs       int           `json:"total_pairs"`
	ExcludedFraction float64       `json:"excluded_fraction"` // share of ordered pairs with no path
	Distribution     []LengthCount `json:"distribution"`      // ascending length
}

// AverageShortestPath averages the directed shortest path length over every ordered
// pair (u, v), u != v, where v is reachable from u. Unreachable pairs are excluded and
// reported. Weighted lengths sum step counts; unweighted lengths count reactions.
func AverageShortestPath(g *network.ReactionNetwork, weighted bool) (*PathStats, error) {
	n := g.NumNodes()
	if n < 2 {
		return nil, models.InsufficientDataError{Statistic: "average shortest path", Need: "at least 2 nodes", Have: n}
	}

	var dg graph.Graph
	if weighted {
		dg = g.Directed()
	} else {
		dg = g.DirectedUnweighted()
	}

	counts := make(map[float64]int)
	sum := 0.0
	reachable := 0
	diameter := 0.0
	for u := 0; u < n; u++ {
		sp := path.DijkstraFrom(simple.Node(int64(u)), dg)
		for v := 0; v < n; v++ {
			if u == v {
				continue
			}
			d := sp.WeightTo(int64(v))
			if math.IsInf(d, 1) {
				continue
			}
			counts[d]++
			sum += d
			reachable++
			if d > diameter {
				diameter = d
			}
		}
	}

	total := n * (n - 1)
	if reachable == 0 {
		return nil, models.InsufficientDataError{Statistic: "average shortest path", Need: "at least 1 reachable pair", Have: 0}
	}

	stats := &PathStats{
		Weighted:         weighted,
		Mean:             sum / float64(reachable),
		Diameter:         diameter,
		ReachablePairs:   reachable,
		TotalPairs:       total,
		ExcludedFraction: float64(total-reachable) / float64(total),
		Distribution:     make([]LengthCount, 0, len(counts)),
	}
	for l, c := range counts {
		stats.Distribution = append(stats.Distribution, LengthCount{
			Length:      l,
			Count:       c,
			Probability: float64(c) / float64(reachable),
		})
	}
	sort.Slice(stats.Distribution, func(i, j int) bool {
		return stats.Distribution[i].Length < stats.Distribution[j].Length
	})
	return stats, nil
}

// meanHopLength is the mean undirected hop distance over reachable ordered pairs.
// Node IDs must be 0..n-1.
func meanHopLength(ug graph.Undirected, n int) float64 {
	total := 0
	pairs := 0
	for u := 0; u < n; u++ {
		sp := path.DijkstraFrom(simple.Node(int64(u)), ug)
		for v := 0; v < n; v++ {
			if u == v {
				continue
			}
			d := sp.WeightTo(int64(v))
			if math.IsInf(d, 1) {
				continue
			}
			total += int(d)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(total) / float64(pairs)
}
