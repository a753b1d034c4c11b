package centrality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/network"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	rnet "github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// tieTolerance is the relative gap below which two scores rank as equal
const tieTolerance = 1e-9

// Score is the centrality of one molecule
type Score struct {
	Molecule string  `json:"molecule"`
	Score    float64 `json:"score"`
}

// Ranking lists molecules by descending score. Equal scores, up to rounding,
// keep insertion order.
type Ranking struct {
	Metric string             `json:"metric"`
	Top    []Score            `json:"top"`
	All    map[string]float64 `json:"all"` // every molecule, for node annotations
}

// Options configures betweenness centrality
type Options struct {
	Weighted   bool // use step counts as path lengths
	Normalized bool // divide by (n-1)(n-2), the number of ordered pairs excluding the node
}

// DefaultOptions matches the important-molecule analysis: weighted and normalized
func DefaultOptions() Options {
	return Options{Weighted: true, Normalized: true}
}

// DegreeRanking ranks molecules by total degree (in + out, parallel reactions counted).
// k <= 0 returns every molecule.
func DegreeRanking(g *rnet.ReactionNetwork, k int) (*Ranking, error) {
	if g.NumNodes() == 0 {
		return emptyRanking("degree"), models.InsufficientDataError{Statistic: "degree ranking", Need: "at least 1 node", Have: 0}
	}

	scores := make([]float64, g.NumNodes())
	for i := range scores {
		scores[i] = float64(g.Degree(i))
	}
	return rank(g, "degree", scores, k), nil
}

// BetweennessRanking ranks molecules by exact betweenness centrality (Brandes) on the
// collapsed directed network. Weighted mode runs Dijkstra from every source over
// step counts.
func BetweennessRanking(g *rnet.ReactionNetwork, k int, opts Options) (*Ranking, error) {
	if g.NumNodes() == 0 {
		return emptyRanking("betweenness"), models.InsufficientDataError{Statistic: "betweenness ranking", Need: "at least 1 node", Have: 0}
	}
	return rank(g, "betweenness", Betweenness(g, opts), k), nil
}

// Betweenness returns the betweenness score of every node, indexed by node
func Betweenness(g *rnet.ReactionNetwork, opts Options) []float64 {
	n := g.NumNodes()
	scores := make([]float64, n)
	if n == 0 {
		return scores
	}

	if opts.Weighted {
		scores = weightedBetweenness(g.Directed())
	} else {
		for id, b := range network.Betweenness(g.DirectedUnweighted()) {
			scores[id] = b
		}
	}

	if opts.Normalized && n > 2 {
		scale := 1 / float64((n-1)*(n-2))
		for i := range scores {
			scores[i] *= scale
		}
	}
	return scores
}

// CentralPointDominance is the mean gap between the most central molecule and
// every other molecule, using normalized unweighted betweenness:
// sum(max - c_i) / (n - 1).
func CentralPointDominance(g *rnet.ReactionNetwork) (float64, error) {
	n := g.NumNodes()
	if n < 2 {
		return 0, models.InsufficientDataError{Statistic: "central point dominance", Need: "at least 2 nodes", Have: n}
	}

	scores := Betweenness(g, Options{Weighted: false, Normalized: true})
	highest := scores[0]
	for _, s := range scores {
		if s > highest {
			highest = s
		}
	}

	total := 0.0
	for _, s := range scores {
		total += highest - s
	}
	return total / float64(n-1), nil
}

func rank(g *rnet.ReactionNetwork, metric string, scores []float64, k int) *Ranking {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		x, y := scores[order[a]], scores[order[b]]
		return x > y+tieTolerance*math.Max(1, math.Max(math.Abs(x), math.Abs(y)))
	})

	if k <= 0 || k > len(order) {
		k = len(order)
	}

	ranking := &Ranking{
		Metric: metric,
		Top:    make([]Score, k),
		All:    make(map[string]float64, len(scores)),
	}
	for i := 0; i < k; i++ {
		ranking.Top[i] = Score{Molecule: g.Molecule(order[i]), Score: scores[order[i]]}
	}
	for i, s := range scores {
		ranking.All[g.Molecule(i)] = s
	}
	return ranking
}

func emptyRanking(metric string) *Ranking {
	return &Ranking{Metric: metric, Top: []Score{}, All: map[string]float64{}}
}
