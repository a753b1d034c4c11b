package clusters

import (
	"context"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	rnet "github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// LouvainOptions configures greedy modularity optimisation
type LouvainOptions struct {
	Seed          int64   // node visiting order
	MaxLevels     int     // aggregation levels, 0 = until no node moves
	MaxIterations int     // local moving sweeps per level
	MinGain       float64 // smallest modularity gain that moves a node
	Logger        *zerolog.Logger
}

func DefaultLouvainOptions() LouvainOptions {
	return LouvainOptions{
		Seed:          42,
		MaxIterations: 100,
		MinGain:       1e-10,
	}
}

// LouvainLevel is the partition after one local moving phase, in molecules
type LouvainLevel struct {
	Index       int        `json:"index"`
	Communities [][]string `json:"communities"`
	Modularity  float64    `json:"modularity"`
	Moves       int        `json:"moves"`
}

// LouvainResult holds the hierarchy found by Louvain. The last level is the final
// partition.
type LouvainResult struct {
	Levels     []LouvainLevel `json:"levels"`
	Modularity float64        `json:"modularity"`
	Membership map[string]int `json:"membership"`
	CapReached bool           `json:"cap_reached"`
}

// Communities returns the final partition
func (r *LouvainResult) Communities() [][]string { return r.Levels[len(r.Levels)-1].Communities }

// weighted undirected graph for one Louvain level
type levelGraph struct {
	nbrs   [][]int // sorted, self excluded
	wts    [][]float64
	loops  []float64
	degree []float64 // self-loops count twice
	m      float64
}

func newLevelGraph(loops []float64, pairs map[[2]int]float64) *levelGraph {
	n := len(loops)
	lg := &levelGraph{
		nbrs:   make([][]int, n),
		wts:    make([][]float64, n),
		loops:  loops,
		degree: make([]float64, n),
	}

	keys := make([][2]int, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, k := range keys {
		a, b, w := k[0], k[1], pairs[k]
		lg.nbrs[a] = append(lg.nbrs[a], b)
		lg.wts[a] = append(lg.wts[a], w)
		lg.nbrs[b] = append(lg.nbrs[b], a)
		lg.wts[b] = append(lg.wts[b], w)
		lg.degree[a] += w
		lg.degree[b] += w
		lg.m += w
	}
	for i, w := range loops {
		lg.degree[i] += 2 * w
		lg.m += w
	}
	return lg
}

func (lg *levelGraph) size() int { return len(lg.loops) }

// moveNodes runs local moving sweeps until no node changes community, returning
// the community of every node (renumbered from 0 by first node) and the number of
// moves made
func (lg *levelGraph) moveNodes(ctx context.Context, opts LouvainOptions, rng *rand.Rand) ([]int, int, bool) {
	n := lg.size()
	comm := make([]int, n)
	tot := make([]float64, n)
	for i := range comm {
		comm[i] = i
		tot[i] = lg.degree[i]
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	m2 := 2 * lg.m
	moves := 0
	cut := false
	for sweep := 0; sweep < opts.MaxIterations; sweep++ {
		if ctx.Err() != nil {
			cut = true
			break
		}
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		swept := 0
		for _, u := range order {
			own := comm[u]
			k := lg.degree[u]
			tot[own] -= k

			links := make(map[int]float64)
			candidates := []int{own}
			links[own] = 0
			for i, v := range lg.nbrs[u] {
				c := comm[v]
				if _, ok := links[c]; !ok {
					candidates = append(candidates, c)
				}
				links[c] += lg.wts[u][i]
			}
			sort.Ints(candidates)

			best := own
			bestGain := links[own] - tot[own]*k/m2
			for _, c := range candidates {
				gain := links[c] - tot[c]*k/m2
				if gain > bestGain+opts.MinGain {
					best = c
					bestGain = gain
				}
			}

			tot[best] += k
			if best != own {
				comm[u] = best
				swept++
			}
		}
		moves += swept
		if swept == 0 {
			break
		}
	}
	return renumber(comm), moves, cut
}

// aggregate collapses every community into one node
func (lg *levelGraph) aggregate(comm []int, count int) *levelGraph {
	loops := make([]float64, count)
	pairs := make(map[[2]int]float64)
	for u := range lg.loops {
		cu := comm[u]
		loops[cu] += lg.loops[u]
		for i, v := range lg.nbrs[u] {
			if v < u {
				continue
			}
			cv := comm[v]
			switch {
			case cu == cv:
				loops[cu] += lg.wts[u][i]
			case cu < cv:
				pairs[[2]int{cu, cv}] += lg.wts[u][i]
			default:
				pairs[[2]int{cv, cu}] += lg.wts[u][i]
			}
		}
	}
	return newLevelGraph(loops, pairs)
}

func renumber(comm []int) []int {
	ids := make(map[int]int)
	out := make([]int, len(comm))
	for i, c := range comm {
		id, ok := ids[c]
		if !ok {
			id = len(ids)
			ids[c] = id
		}
		out[i] = id
	}
	return out
}

// Louvain partitions the undirected view by greedy modularity optimisation:
// nodes move to the neighbouring community with the best gain, communities are
// collapsed into nodes and the process repeats on the smaller graph. Nodes are
// visited in a shuffled order drawn from Seed, so equal seeds give equal results.
// Modularity is reported on the unaggregated view, the same score as
// Girvan-Newman levels.
func Louvain(ctx context.Context, g *rnet.ReactionNetwork, opts LouvainOptions) (*LouvainResult, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultLouvainOptions().MaxIterations
	}

	edges := g.UndirectedEdges()
	if len(edges) == 0 {
		return nil, models.InsufficientDataError{Statistic: "louvain communities", Need: "at least 1 edge", Have: 0}
	}

	pairs := make(map[[2]int]float64, len(edges))
	for _, e := range edges {
		pairs[e] = 1
	}
	current := newLevelGraph(make([]float64, g.NumNodes()), pairs)
	score := qualityFunc(Modularity, g.Undirected(), edges)
	rng := rand.New(rand.NewSource(opts.Seed))

	// original node -> node of the current level
	toLevel := make([]int, g.NumNodes())
	for i := range toLevel {
		toLevel[i] = i
	}

	logger.Info().
		Int("nodes", g.NumNodes()).
		Int("edges", len(edges)).
		Int64("seed", opts.Seed).
		Msg("Starting Louvain")

	result := &LouvainResult{}
	for {
		if opts.MaxLevels > 0 && len(result.Levels) >= opts.MaxLevels {
			result.CapReached = true
			break
		}

		comm, moves, cut := current.moveNodes(ctx, opts, rng)
		if moves == 0 && !cut && len(result.Levels) > 0 {
			break
		}
		count := 0
		for _, c := range comm {
			if c+1 > count {
				count = c + 1
			}
		}
		for i, node := range toLevel {
			toLevel[i] = comm[node]
		}

		partition := partitionOf(toLevel, count)
		level := LouvainLevel{
			Index:       len(result.Levels),
			Communities: moleculesOf(g, partition),
			Modularity:  score(partition),
			Moves:       moves,
		}
		result.Levels = append(result.Levels, level)

		logger.Debug().
			Int("level", level.Index).
			Int("communities", count).
			Int("moves", moves).
			Float64("modularity", level.Modularity).
			Msg("Level recorded")

		if cut {
			result.CapReached = true
			logger.Warn().Int("levels", len(result.Levels)).Msg("Louvain cut short")
			break
		}
		if moves == 0 || count == current.size() {
			break
		}
		current = current.aggregate(comm, count)
	}

	final := result.Levels[len(result.Levels)-1]
	result.Modularity = final.Modularity
	result.Membership = make(map[string]int, g.NumNodes())
	for c, members := range final.Communities {
		for _, m := range members {
			result.Membership[m] = c
		}
	}

	logger.Info().
		Int("levels", len(result.Levels)).
		Int("communities", len(final.Communities)).
		Float64("modularity", result.Modularity).
		Msg("Louvain finished")
	return result, nil
}

// partitionOf groups nodes by community into sorted lists ordered by smallest node
func partitionOf(membership []int, count int) [][]int {
	out := make([][]int, count)
	for node, c := range membership {
		out[c] = append(out[c], node)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
