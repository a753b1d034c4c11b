package network

import (
	"fmt"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
)

// Reaction is a directed edge reactant -> product between node indices
type Reaction struct {
	From     int  `json:"from"`
	To       int  `json:"to"`
	Steps    int  `json:"steps"`     // step count used as edge weight
	HasSteps bool `json:"has_steps"` // false when the record carried no step count
}

// ReactionNetwork is a directed multigraph of molecules and reactions.
// Node indices follow first appearance in the input and double as gonum node IDs.
// A network is read-only once built.
type ReactionNetwork struct {
	ids       []string
	index     map[string]int
	reactions []Reaction
	inDegree  []int
	outDegree []int
	skipped   []int
}

// BuildOptions controls network construction
type BuildOptions struct {
	MergeParallel bool // collapse parallel reactions into one, keeping the smallest step count
	DefaultSteps  int  // weight for records without a step count (default 1)
	Lenient       bool // skip invalid records instead of failing
}

// DefaultBuildOptions keeps every reaction as its own edge
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		MergeParallel: false,
		DefaultSteps:  1,
		Lenient:       false,
	}
}

// Build constructs a reaction network from normalized records.
// Construction is all-or-nothing: in strict mode the first invalid record fails the build.
func Build(recs []models.Record, opts BuildOptions) (*ReactionNetwork, error) {
	if opts.DefaultSteps <= 0 {
		opts.DefaultSteps = 1
	}

	g := newNetwork(len(recs))
	valid := make([]models.Record, 0, len(recs))
	for i, rec := range recs {
		if err := rec.Validate(); err != nil {
			if !opts.Lenient {
				if ve, ok := err.(models.ValidationError); ok {
					ve.Row = i
					return nil, ve
				}
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			g.skipped = append(g.skipped, i)
			continue
		}
		valid = append(valid, rec)
	}

	merged := make(map[[2]int]int) // (from, to) -> position in reactions
	for _, rec := range valid {
		from := g.addMolecule(rec.Reactant)
		to := g.addMolecule(rec.Product)
		reaction := Reaction{
			From:     from,
			To:       to,
			Steps:    rec.StepCount(opts.DefaultSteps),
			HasSteps: rec.Steps != nil,
		}

		if opts.MergeParallel {
			g.mergeReaction(merged, reaction)
			continue
		}
		g.addReaction(reaction)
	}

	return g, nil
}

// MergeParallel returns a copy with parallel reactions collapsed into one,
// keeping the smallest step count. Self-loops stay. Molecule order is unchanged.
func (g *ReactionNetwork) MergeParallel() *ReactionNetwork {
	out := newNetwork(len(g.ids))
	for _, id := range g.ids {
		out.addMolecule(id)
	}
	merged := make(map[[2]int]int, len(g.reactions))
	for _, r := range g.reactions {
		out.mergeReaction(merged, r)
	}
	out.skipped = append(out.skipped, g.skipped...)
	return out
}

// mergeReaction adds r unless a reaction between the same pair exists, in which
// case the smaller step count wins
func (g *ReactionNetwork) mergeReaction(merged map[[2]int]int, r Reaction) {
	key := [2]int{r.From, r.To}
	if pos, exists := merged[key]; exists {
		if r.Steps < g.reactions[pos].Steps {
			g.reactions[pos].Steps = r.Steps
			g.reactions[pos].HasSteps = r.HasSteps
		}
		return
	}
	merged[key] = len(g.reactions)
	g.addReaction(r)
}

func newNetwork(capacity int) *ReactionNetwork {
	return &ReactionNetwork{
		ids:       make([]string, 0, capacity),
		index:     make(map[string]int, capacity),
		reactions: make([]Reaction, 0, capacity),
	}
}

func (g *ReactionNetwork) addMolecule(id string) int {
	if idx, exists := g.index[id]; exists {
		return idx
	}
	idx := len(g.ids)
	g.ids = append(g.ids, id)
	g.index[id] = idx
	g.inDegree = append(g.inDegree, 0)
	g.outDegree = append(g.outDegree, 0)
	return idx
}

func (g *ReactionNetwork) addReaction(r Reaction) {
	g.reactions = append(g.reactions, r)
	g.outDegree[r.From]++
	g.inDegree[r.To]++
}

// NumNodes returns the number of molecules
func (g *ReactionNetwork) NumNodes() int { return len(g.ids) }

// NumEdges returns the number of reactions, parallel edges included
func (g *ReactionNetwork) NumEdges() int { return len(g.reactions) }

// Skipped returns the record positions dropped by a lenient build
func (g *ReactionNetwork) Skipped() []int {
	out := make([]int, len(g.skipped))
	copy(out, g.skipped)
	return out
}

// Molecules returns the molecule identifiers in insertion order
func (g *ReactionNetwork) Molecules() []string {
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

// Molecule returns the identifier of node i
func (g *ReactionNetwork) Molecule(i int) string { return g.ids[i] }

// Index returns the node index of a molecule
func (g *ReactionNetwork) Index(id string) (int, bool) {
	idx, ok := g.index[id]
	return idx, ok
}

// Has reports whether the molecule is part of the network
func (g *ReactionNetwork) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Reactions returns the edges in insertion order
func (g *ReactionNetwork) Reactions() []Reaction {
	out := make([]Reaction, len(g.reactions))
	copy(out, g.reactions)
	return out
}

// InDegree counts reactions producing node i
func (g *ReactionNetwork) InDegree(i int) int { return g.inDegree[i] }

// OutDegree counts reactions consuming node i
func (g *ReactionNetwork) OutDegree(i int) int { return g.outDegree[i] }

// Degree is in-degree plus out-degree; a self-loop counts twice
func (g *ReactionNetwork) Degree(i int) int { return g.inDegree[i] + g.outDegree[i] }

// Subgraph returns the network induced by the given node indices.
// Node and edge order follow the parent network.
func (g *ReactionNetwork) Subgraph(nodes []int) *ReactionNetwork {
	keep := make([]bool, len(g.ids))
	for _, n := range nodes {
		if n >= 0 && n < len(g.ids) {
			keep[n] = true
		}
	}

	sub := newNetwork(len(nodes))
	for i, id := range g.ids {
		if keep[i] {
			sub.addMolecule(id)
		}
	}
	for _, r := range g.reactions {
		if !keep[r.From] || !keep[r.To] {
			continue
		}
		sub.addReaction(Reaction{
			From:     sub.index[g.ids[r.From]],
			To:       sub.index[g.ids[r.To]],
			Steps:    r.Steps,
			HasSteps: r.HasSteps,
		})
	}
	return sub
}

// Union merges two networks. Molecules of a come first, then the new molecules of b.
func Union(a, b *ReactionNetwork) *ReactionNetwork {
	out := newNetwork(a.NumNodes() + b.NumNodes())
	for _, src := range []*ReactionNetwork{a, b} {
		for _, id := range src.ids {
			out.addMolecule(id)
		}
	}
	for _, src := range []*ReactionNetwork{a, b} {
		for _, r := range src.reactions {
			out.addReaction(Reaction{
				From:     out.index[src.ids[r.From]],
				To:       out.index[src.ids[r.To]],
				Steps:    r.Steps,
				HasSteps: r.HasSteps,
			})
		}
	}
	return out
}

// String summarizes the network size
func (g *ReactionNetwork) String() string {
	return fmt.Sprintf("ReactionNetwork{nodes: %d, edges: %d}", g.NumNodes(), g.NumEdges())
}
