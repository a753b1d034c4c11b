package analysis

import (
	"fmt"

	"github.com/gilchrisn/reaction-network-analysis/pkg/centrality"
	"github.com/gilchrisn/reaction-network-analysis/pkg/clusters"
	"github.com/gilchrisn/reaction-network-analysis/pkg/degree"
	"github.com/gilchrisn/reaction-network-analysis/pkg/fragmentation"
	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
	"github.com/gilchrisn/reaction-network-analysis/pkg/properties"
)

// Kind names one analysis
type Kind int

const (
	KindFragmentation Kind = iota
	KindImportant
	KindDegree
	KindProperties
	KindClusters
	KindCorrelation
	KindDominance
	KindCompare
	KindMerge
)

var kindNames = map[Kind]string{
	KindFragmentation: "fragmentation",
	KindImportant:     "important",
	KindDegree:        "degree",
	KindProperties:    "properties",
	KindClusters:      "clusters",
	KindCorrelation:   "correlation",
	KindDominance:     "dominance",
	KindCompare:       "compare",
	KindMerge:         "merge",
}

// degreeBased kinds read degrees off a graph without parallel reactions
func (k Kind) degreeBased() bool {
	switch k {
	case KindImportant, KindDegree, KindCorrelation, KindDominance:
		return true
	}
	return false
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a command name to a Kind
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, models.ValidationError{Field: "command", Row: -1, Message: "unknown analysis", Value: s}
}

// FragmentationParams selects the component mode
type FragmentationParams struct {
	Mode fragmentation.Mode
}

// ImportantParams configures the node importance rankings
type ImportantParams struct {
	TopK       int
	Centrality centrality.Options
	PageRank   centrality.PageRankOptions
}

// DegreeParams configures the degree distribution and its power-law fit
type DegreeParams struct {
	Kind degree.Kind
	Fit  degree.FitOptions
}

// PropertiesParams configures path, clustering and small-world statistics
type PropertiesParams struct {
	Weighted             bool
	LargestComponentOnly bool
	Omega                bool
	OmegaOptions         properties.OmegaOptions
}

// ClustersParams configures k-core listing and community detection
type ClustersParams struct {
	CoreDepth    int
	GirvanNewman clusters.Options
	Louvain      *clusters.LouvainOptions // nil skips Louvain
}

// CorrelationParams selects the degree kinds on either end of a reaction
type CorrelationParams struct {
	Source degree.Kind
	Target degree.Kind
}

// CompareParams holds the reference network and the molecules to look for
type CompareParams struct {
	Other     *network.ReactionNetwork
	Important []string
}

// MergeParams holds the network merged into the primary one before fragmentation
type MergeParams struct {
	Other *network.ReactionNetwork
	Mode  fragmentation.Mode
}

// Command is one analysis request. Exactly the params matching Kind are read;
// KindDominance takes none.
type Command struct {
	Kind          Kind
	MergeParallel bool // collapse parallel reactions for the degree-based kinds
	Fragmentation *FragmentationParams
	Important     *ImportantParams
	Degree        *DegreeParams
	Properties    *PropertiesParams
	Clusters      *ClustersParams
	Correlation   *CorrelationParams
	Compare       *CompareParams
	Merge         *MergeParams
}

// Validate checks that the params for the command kind are present
func (c Command) Validate() error {
	missing := false
	switch c.Kind {
	case KindFragmentation:
		missing = c.Fragmentation == nil
	case KindImportant:
		missing = c.Important == nil
	case KindDegree:
		missing = c.Degree == nil
	case KindProperties:
		missing = c.Properties == nil
	case KindClusters:
		missing = c.Clusters == nil
	case KindCorrelation:
		missing = c.Correlation == nil
	case KindDominance:
	case KindCompare:
		missing = c.Compare == nil || c.Compare.Other == nil
	case KindMerge:
		missing = c.Merge == nil || c.Merge.Other == nil
	default:
		return models.ValidationError{Field: "command", Row: -1, Message: "unknown analysis", Value: c.Kind.String()}
	}
	if missing {
		return models.ValidationError{Field: "command", Row: -1, Message: "missing parameters", Value: c.Kind.String()}
	}
	return nil
}

// Command builds the command of the given kind from configuration. Compare and
// merge take the reference network as other; the remaining kinds ignore it.
func (c *Config) Command(kind Kind, other *network.ReactionNetwork) (Command, error) {
	cmd := Command{Kind: kind, MergeParallel: c.CollapseParallel()}

	switch kind {
	case KindFragmentation:
		mode, err := fragmentation.ParseMode(c.FragmentationMode())
		if err != nil {
			return cmd, err
		}
		cmd.Fragmentation = &FragmentationParams{Mode: mode}

	case KindImportant:
		cmd.Important = &ImportantParams{
			TopK:       c.TopK(),
			Centrality: centrality.Options{Weighted: c.Weighted(), Normalized: true},
			PageRank:   centrality.PageRankOptions{Damping: c.PageRankDamping(), Tolerance: c.PageRankTolerance()},
		}

	case KindDegree:
		k, err := degree.ParseKind(c.DegreeType())
		if err != nil {
			return cmd, err
		}
		cmd.Degree = &DegreeParams{Kind: k, Fit: degree.FitOptions{KMin: c.FitKMin(), KMax: c.FitKMax(), CompareKMin: c.CompareKMin()}}

	case KindProperties:
		cmd.Properties = &PropertiesParams{
			Weighted:             c.Weighted(),
			LargestComponentOnly: c.LargestComponentOnly(),
			Omega:                c.OmegaEnabled(),
			OmegaOptions: properties.OmegaOptions{
				Seed:             c.OmegaSeed(),
				RewireIterations: c.OmegaRewireIterations(),
				RandomGraphs:     c.OmegaRandomGraphs(),
				Deadline:         c.OmegaTimeout(),
			},
		}

	case KindClusters:
		quality, err := clusters.ParseQuality(c.GNQuality())
		if err != nil {
			return cmd, err
		}
		cmd.Clusters = &ClustersParams{
			CoreDepth: c.CoreDepth(),
			GirvanNewman: clusters.Options{
				MaxLevels:            c.GNMaxLevels(),
				Quality:              quality,
				LargestComponentOnly: c.GNLargestComponentOnly(),
			},
		}
		if c.LouvainEnabled() {
			opts := clusters.DefaultLouvainOptions()
			opts.Seed = c.LouvainSeed()
			opts.MaxLevels = c.LouvainMaxLevels()
			cmd.Clusters.Louvain = &opts
		}

	case KindCorrelation:
		k, err := degree.ParseKind(c.DegreeType())
		if err != nil {
			return cmd, err
		}
		cmd.Correlation = &CorrelationParams{Source: k, Target: k}

	case KindCompare:
		cmd.Compare = &CompareParams{Other: other, Important: c.ImportantMolecules()}

	case KindMerge:
		mode, err := fragmentation.ParseMode(c.FragmentationMode())
		if err != nil {
			return cmd, err
		}
		cmd.Merge = &MergeParams{Other: other, Mode: mode}
	}

	return cmd, cmd.Validate()
}
