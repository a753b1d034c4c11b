package clusters

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// KCore returns the subgraph induced by the k-core of the undirected view: the
// maximal set of molecules where every molecule has at least k distinct neighbours
// inside the set. Self-loops and parallel reactions do not add to a degree.
func KCore(g *network.ReactionNetwork, k int) (*network.ReactionNetwork, error) {
	if k < 0 {
		return nil, models.ValidationError{Field: "k", Row: -1, Message: "k must not be negative"}
	}
	return g.Subgraph(coreNodes(g, k)), nil
}

func coreNodes(g *network.ReactionNetwork, k int) []int {
	if k == 0 {
		all := make([]int, g.NumNodes())
		for i := range all {
			all[i] = i
		}
		return all
	}
	nodes := network.NodeIndices(topo.KCore(k, g.Undirected()))
	sort.Ints(nodes)
	return nodes
}

// CoreNumbers maps every molecule to the largest k whose k-core contains it
func CoreNumbers(g *network.ReactionNetwork) map[string]int {
	cores := make(map[string]int, g.NumNodes())
	for i := 0; i < g.NumNodes(); i++ {
		cores[g.Molecule(i)] = 0
	}

	ug := g.Undirected()
	for k := 1; ; k++ {
		nodes := topo.KCore(k, ug)
		if len(nodes) == 0 {
			break
		}
		for _, n := range nodes {
			cores[g.Molecule(int(n.ID()))] = k
		}
	}
	return cores
}

// MaxCore returns the degeneracy of the network, the highest core number
func MaxCore(g *network.ReactionNetwork) int {
	highest := 0
	for _, c := range CoreNumbers(g) {
		if c > highest {
			highest = c
		}
	}
	return highest
}

// CoreLevel is one k-core
type CoreLevel struct {
	K         int      `json:"k"`
	Molecules []string `json:"molecules"`
	Reactions int      `json:"reactions"`
}

// InnermostCores returns the k-cores for k from MaxCore-depth+1 up to MaxCore,
// skipping k below 1. Molecules are listed in insertion order.
func InnermostCores(g *network.ReactionNetwork, depth int) ([]CoreLevel, error) {
	if g.NumNodes() == 0 {
		return nil, models.InsufficientDataError{Statistic: "k-core", Need: "at least 1 node", Have: 0}
	}
	if depth < 1 {
		depth = 1
	}

	top := MaxCore(g)
	low := top - depth + 1
	if low < 1 {
		low = 1
	}

	levels := make([]CoreLevel, 0, depth)
	for k := low; k <= top; k++ {
		core := g.Subgraph(coreNodes(g, k))
		levels = append(levels, CoreLevel{K: k, Molecules: core.Molecules(), Reactions: core.NumEdges()})
	}
	return levels, nil
}
