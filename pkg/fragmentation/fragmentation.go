package fragmentation

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// Mode selects how edge direction is treated when finding components
type Mode int

const (
	Weak   Mode = iota // ignore reaction direction
	Strong             // require mutual reachability
)

func (m Mode) String() string {
	switch m {
	case Weak:
		return "weak"
	case Strong:
		return "strong"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts "weak"/"strong" to a Mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "weak", "":
		return Weak, nil
	case "strong":
		return Strong, nil
	}
	return Weak, models.ValidationError{Field: "mode", Row: -1, Message: "mode must be weak or strong", Value: s}
}

// Component is one connected component
type Component struct {
	Molecules []string `json:"molecules"`
	Nodes     []int    `json:"-"`
}

// Size returns the number of molecules in the component
func (c Component) Size() int { return len(c.Nodes) }

// Result summarizes the fragmentation of a network
type Result struct {
	Mode             string         `json:"mode"`
	NumNodes         int            `json:"num_nodes"`
	NumEdges         int            `json:"num_edges"`
	Components       []Component    `json:"components"`
	Sizes            []int          `json:"sizes"`             // descending
	SizeDistribution map[int]int    `json:"size_distribution"` // component size -> number of components
	LargestFraction  float64        `json:"largest_fraction"`
	IsConnected      bool           `json:"is_connected"`
	Membership       map[string]int `json:"membership"` // molecule -> component position
}

// Components partitions the nodes of g into components, largest first.
// Equal-sized components keep the order of their earliest node; nodes inside a
// component are in insertion order.
func Components(g *network.ReactionNetwork, mode Mode) [][]int {
	if g.NumNodes() == 0 {
		return [][]int{}
	}

	var raw [][]graph.Node
	switch mode {
	case Strong:
		raw = topo.TarjanSCC(g.DirectedUnweighted())
	default:
		raw = topo.ConnectedComponents(g.Undirected())
	}

	comps := make([][]int, len(raw))
	for i, c := range raw {
		nodes := network.NodeIndices(c)
		sort.Ints(nodes)
		comps[i] = nodes
	}

	sort.SliceStable(comps, func(i, j int) bool {
		if len(comps[i]) != len(comps[j]) {
			return len(comps[i]) > len(comps[j])
		}
		return comps[i][0] < comps[j][0]
	})
	return comps
}

// Analyze computes the components of g and their size distribution
func Analyze(g *network.ReactionNetwork, mode Mode) (*Result, error) {
	if g.NumNodes() == 0 {
		return nil, models.InsufficientDataError{Statistic: "fragmentation", Need: "at least 1 node", Have: 0}
	}

	comps := Components(g, mode)
	result := &Result{
		Mode:             mode.String(),
		NumNodes:         g.NumNodes(),
		NumEdges:         g.NumEdges(),
		Components:       make([]Component, len(comps)),
		Sizes:            make([]int, len(comps)),
		SizeDistribution: make(map[int]int),
		Membership:       make(map[string]int, g.NumNodes()),
	}

	for i, nodes := range comps {
		molecules := make([]string, len(nodes))
		for j, n := range nodes {
			molecules[j] = g.Molecule(n)
			result.Membership[molecules[j]] = i
		}
		result.Components[i] = Component{Molecules: molecules, Nodes: nodes}
		result.Sizes[i] = len(nodes)
		result.SizeDistribution[len(nodes)]++
	}

	result.LargestFraction = float64(result.Sizes[0]) / float64(g.NumNodes())
	result.IsConnected = len(comps) == 1
	return result, nil
}

// LargestComponent returns the subgraph induced by the largest weak component
func LargestComponent(g *network.ReactionNetwork) *network.ReactionNetwork {
	comps := Components(g, Weak)
	if len(comps) == 0 {
		return g
	}
	return g.Subgraph(comps[0])
}
