package centrality

import (
	"fmt"

	"gonum.org/v1/gonum/graph/network"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	rnet "github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// PageRankOptions configures the random-surfer ranking
type PageRankOptions struct {
	Damping   float64 `json:"damping"`
	Tolerance float64 `json:"tolerance"`
}

func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{Damping: 0.85, Tolerance: 1e-6}
}

// PageRankRanking ranks molecules by PageRank over the collapsed directed network.
// Zero options fall back to the defaults. Scores are min-max normalized to [0, 1]; a network where every molecule has the
// same rank scores 0.5 everywhere.
func PageRankRanking(g *rnet.ReactionNetwork, k int, opts PageRankOptions) (*Ranking, error) {
	if g.NumNodes() == 0 {
		return emptyRanking("pagerank"), models.InsufficientDataError{Statistic: "pagerank ranking", Need: "at least 1 node", Have: 0}
	}
	if opts.Damping == 0 {
		opts.Damping = DefaultPageRankOptions().Damping
	}
	if opts.Damping < 0 || opts.Damping >= 1 {
		return nil, models.ValidationError{Field: "damping", Row: -1, Message: "must be in (0, 1)", Value: fmt.Sprintf("%g", opts.Damping)}
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultPageRankOptions().Tolerance
	}

	raw := network.PageRank(g.DirectedUnweighted(), opts.Damping, opts.Tolerance)
	scores := make([]float64, g.NumNodes())
	for id, s := range raw {
		scores[id] = s
	}
	return rank(g, "pagerank", normalize(scores), k), nil
}

func normalize(scores []float64) []float64 {
	lo, hi := scores[0], scores[0]
	for _, s := range scores {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	out := make([]float64, len(scores))
	spread := hi - lo
	for i, s := range scores {
		if spread == 0 {
			out[i] = 0.5
			continue
		}
		out[i] = (s - lo) / spread
	}
	return out
}
