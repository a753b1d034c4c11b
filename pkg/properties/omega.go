package properties

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/reaction-network-analysis/pkg/fragmentation"
	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// OmegaOptions configures the small-world coefficient
type OmegaOptions struct {
	Seed             int64
	RewireIterations int           // swap attempts per edge for each random reference
	RandomGraphs     int           // random references averaged into Lrand
	Deadline         time.Duration // 0 = bounded only by ctx
	Logger           *zerolog.Logger
}

// DefaultOmegaOptions returns three references rewired three times per edge
func DefaultOmegaOptions() OmegaOptions {
	return OmegaOptions{
		Seed:             42,
		RewireIterations: 3,
		RandomGraphs:     3,
	}
}

// OmegaResult holds the small-world coefficient and its ingredients
type OmegaResult struct {
	Omega             float64 `json:"omega"`
	PathLength        float64 `json:"path_length"`        // L of the largest component
	Clustering        float64 `json:"clustering"`         // C of the largest component
	RandomPathLength  float64 `json:"random_path_length"` // mean L over random references
	LatticeClustering float64 `json:"lattice_clustering"` // C of the ring lattice
	Nodes             int     `json:"nodes"`
	Edges             int     `json:"edges"`
	RandomGraphs      int     `json:"random_graphs"` // references actually completed
	CapReached        bool    `json:"cap_reached"`
}

// Omega computes omega = Lrand/L - C/Clatt on the largest weakly connected component,
// treated as undirected. Values near 0 indicate small-world structure, negative values
// lattice-like and positive values random-like structure.
//
// Random references are drawn from a seeded generator, so equal seeds give equal
// results. When the deadline or ctx expires the result averages the references
// finished so far and CapReached is set.
func Omega(ctx context.Context, g *network.ReactionNetwork, opts OmegaOptions) (*OmegaResult, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.RandomGraphs <= 0 {
		opts.RandomGraphs = 1
	}
	if opts.RewireIterations <= 0 {
		opts.RewireIterations = 1
	}
	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}

	lcc := fragmentation.LargestComponent(g)
	n := lcc.NumNodes()
	edges := make([][2]int64, 0, lcc.NumEdges())
	for _, e := range lcc.UndirectedEdges() {
		edges = append(edges, [2]int64{int64(e[0]), int64(e[1])})
	}
	if n < 4 || len(edges) == 0 {
		return nil, models.InsufficientDataError{Statistic: "small-world omega", Need: "a component with at least 4 nodes and 1 edge", Have: n}
	}

	ug := lcc.Undirected()
	result := &OmegaResult{
		PathLength: meanHopLength(ug, n),
		Clustering: averageClustering(ug, n),
		Nodes:      n,
		Edges:      len(edges),
	}
	result.LatticeClustering = averageClustering(ringLattice(n, len(edges)), n)
	if result.LatticeClustering == 0 {
		return nil, models.InsufficientDataError{Statistic: "small-world omega", Need: "a lattice reference with nonzero clustering", Have: len(edges)}
	}

	logger.Info().
		Int("nodes", n).
		Int("edges", len(edges)).
		Float64("path_length", result.PathLength).
		Float64("clustering", result.Clustering).
		Msg("Computing small-world omega")

	rng := rand.New(rand.NewSource(opts.Seed))
	attempts := opts.RewireIterations * len(edges)
	lrand := 0.0
	for r := 0; r < opts.RandomGraphs; r++ {
		ref, ok := randomReference(ctx, n, edges, attempts, rng)
		if !ok {
			result.CapReached = true
			logger.Warn().
				Int("completed", result.RandomGraphs).
				Int("requested", opts.RandomGraphs).
				Msg("Omega budget exhausted, using completed references")
			break
		}
		l := meanHopLength(ref, n)
		lrand += l
		result.RandomGraphs++
		logger.Debug().Int("reference", r).Float64("path_length", l).Msg("Random reference done")
	}

	if result.RandomGraphs == 0 {
		return nil, models.InsufficientDataError{Statistic: "small-world omega", Need: "at least 1 completed random reference", Have: 0}
	}

	result.RandomPathLength = lrand / float64(result.RandomGraphs)
	result.Omega = result.RandomPathLength/result.PathLength - result.Clustering/result.LatticeClustering

	logger.Info().
		Float64("omega", result.Omega).
		Int("random_graphs", result.RandomGraphs).
		Bool("cap_reached", result.CapReached).
		Msg("Small-world omega computed")
	return result, nil
}
