package clusters

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/gilchrisn/reaction-network-analysis/pkg/fragmentation"
	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	rnet "github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// scoreTolerance is the relative gap below which edge betweenness values are equal
const scoreTolerance = 1e-12

// Quality scores a partition of the undirected view
type Quality int

const (
	Modularity      Quality = iota // Newman modularity, resolution 1
	IntraInterRatio                // mean over communities of 2*intra/inter edges
)

func (q Quality) String() string {
	switch q {
	case Modularity:
		return "modularity"
	case IntraInterRatio:
		return "intra-inter"
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ParseQuality converts "modularity" or "intra-inter" to a Quality
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "modularity", "":
		return Modularity, nil
	case "intra-inter":
		return IntraInterRatio, nil
	}
	return Modularity, models.ValidationError{Field: "quality", Row: -1, Message: "quality must be modularity or intra-inter", Value: s}
}

// Options configures Girvan-Newman community detection
type Options struct {
	MaxLevels            int // splits to perform, 0 = until every edge is removed
	Quality              Quality
	LargestComponentOnly bool
	Logger               *zerolog.Logger
}

// DefaultOptions scores levels by modularity on the largest component
func DefaultOptions() Options {
	return Options{
		MaxLevels:            0,
		Quality:              Modularity,
		LargestComponentOnly: true,
	}
}

// Level is the partition reached after a number of splits
type Level struct {
	Index       int        `json:"index"` // 0 is the unsplit network
	Communities [][]string `json:"communities"`
	Quality     float64    `json:"quality"`
	Removed     int        `json:"removed_edges"` // edges removed so far
}

// GirvanNewmanResult holds every level and the best scoring one
type GirvanNewmanResult struct {
	Quality    string         `json:"quality"`
	Levels     []Level        `json:"levels"`
	Best       int            `json:"best"` // index into Levels
	Membership map[string]int `json:"membership"`
	CapReached bool           `json:"cap_reached"`
}

// BestLevel returns the level with the highest quality
func (r *GirvanNewmanResult) BestLevel() Level { return r.Levels[r.Best] }

// GirvanNewman splits the undirected view into communities by repeatedly removing
// the edge with the highest betweenness, recomputed after every removal. Equal
// scores remove the edge that appeared first in the reactions. A level is recorded
// each time the number of components grows. The best level maximizes quality,
// earliest first, and is never worse than the unsplit level 0.
//
// MaxLevels or ctx expiry stop the search early and set CapReached; the levels found
// so far are still returned.
func GirvanNewman(ctx context.Context, g *rnet.ReactionNetwork, opts Options) (*GirvanNewmanResult, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	if opts.LargestComponentOnly {
		g = fragmentation.LargestComponent(g)
	}
	edges := g.UndirectedEdges()
	if len(edges) == 0 {
		return nil, models.InsufficientDataError{Statistic: "girvan-newman communities", Need: "at least 1 edge", Have: 0}
	}

	orig := g.Undirected()
	work := g.Undirected()
	removed := make([]bool, len(edges))
	score := qualityFunc(opts.Quality, orig, edges)

	partition := components(work)
	result := &GirvanNewmanResult{
		Quality: opts.Quality.String(),
		Levels:  []Level{newLevel(g, 0, partition, score(partition), 0)},
	}

	logger.Info().
		Int("nodes", g.NumNodes()).
		Int("edges", len(edges)).
		Str("quality", opts.Quality.String()).
		Msg("Starting Girvan-Newman")

	count := 0
	for count < len(edges) {
		if opts.MaxLevels > 0 && len(result.Levels)-1 >= opts.MaxLevels {
			result.CapReached = true
			break
		}

		before := len(partition)
		for len(partition) == before && count < len(edges) {
			if ctx.Err() != nil {
				result.CapReached = true
				break
			}
			e := highestBetweenness(work, edges, removed)
			work.RemoveEdge(int64(edges[e][0]), int64(edges[e][1]))
			removed[e] = true
			count++
			partition = components(work)
		}
		if result.CapReached {
			logger.Warn().Int("levels", len(result.Levels)).Msg("Girvan-Newman cut short")
			break
		}

		level := newLevel(g, len(result.Levels), partition, score(partition), count)
		result.Levels = append(result.Levels, level)
		logger.Debug().
			Int("level", level.Index).
			Int("communities", len(partition)).
			Float64("quality", level.Quality).
			Msg("Level recorded")
	}

	for i, l := range result.Levels {
		if l.Quality > result.Levels[result.Best].Quality {
			result.Best = i
		}
	}
	result.Membership = make(map[string]int, g.NumNodes())
	for c, members := range result.Levels[result.Best].Communities {
		for _, m := range members {
			result.Membership[m] = c
		}
	}

	logger.Info().
		Int("levels", len(result.Levels)).
		Int("best_level", result.Best).
		Int("communities", len(result.BestLevel().Communities)).
		Float64("quality", result.BestLevel().Quality).
		Msg("Girvan-Newman finished")
	return result, nil
}

// highestBetweenness returns the position of the remaining edge with the highest
// edge betweenness. Both orientations of an undirected edge are summed.
func highestBetweenness(work *simple.UndirectedGraph, edges [][2]int, removed []bool) int {
	eb := network.EdgeBetweenness(work)
	best := -1
	bestScore := 0.0
	for i, e := range edges {
		if removed[i] {
			continue
		}
		u, v := int64(e[0]), int64(e[1])
		s := eb[[2]int64{u, v}] + eb[[2]int64{v, u}]
		if best < 0 || beats(s, bestScore) {
			best = i
			bestScore = s
		}
	}
	return best
}

// beats reports whether s exceeds best by more than rounding noise, which grows
// with the magnitude of the scores
func beats(s, best float64) bool {
	return s > best+scoreTolerance*math.Max(1, math.Abs(best))
}

// components returns the connected components as sorted node lists ordered by
// their smallest node
func components(ug graph.Undirected) [][]int {
	raw := topo.ConnectedComponents(ug)
	out := make([][]int, len(raw))
	for i, c := range raw {
		nodes := rnet.NodeIndices(c)
		sort.Ints(nodes)
		out[i] = nodes
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func newLevel(g *rnet.ReactionNetwork, index int, partition [][]int, quality float64, removed int) Level {
	return Level{Index: index, Communities: moleculesOf(g, partition), Quality: quality, Removed: removed}
}

func moleculesOf(g *rnet.ReactionNetwork, partition [][]int) [][]string {
	communities := make([][]string, len(partition))
	for i, nodes := range partition {
		communities[i] = make([]string, len(nodes))
		for j, n := range nodes {
			communities[i][j] = g.Molecule(n)
		}
	}
	return communities
}

func qualityFunc(q Quality, orig graph.Undirected, edges [][2]int) func([][]int) float64 {
	if q == IntraInterRatio {
		return func(p [][]int) float64 { return intraInterRatio(p, edges) }
	}
	return func(p [][]int) float64 {
		communities := make([][]graph.Node, len(p))
		for i, nodes := range p {
			communities[i] = rnet.GonumNodes(nodes)
		}
		return community.Q(orig, communities, 1)
	}
}

// intraInterRatio averages 2*intra/inter over communities, where intra counts edges
// inside a community and inter counts edges leaving it. A single community scores -1.
// A community with no leaving edge is scored against one.
func intraInterRatio(partition [][]int, edges [][2]int) float64 {
	if len(partition) <= 1 {
		return -1
	}

	member := make(map[int]int)
	for c, nodes := range partition {
		for _, n := range nodes {
			member[n] = c
		}
	}
	intra := make([]int, len(partition))
	inter := make([]int, len(partition))
	for _, e := range edges {
		a, b := member[e[0]], member[e[1]]
		if a == b {
			intra[a]++
			continue
		}
		inter[a]++
		inter[b]++
	}

	total := 0.0
	for c := range partition {
		denom := inter[c]
		if denom == 0 {
			denom = 1
		}
		total += 2 * float64(intra[c]) / float64(denom)
	}
	return total / float64(len(partition))
}
