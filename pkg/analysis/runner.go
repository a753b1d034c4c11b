package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/reaction-network-analysis/pkg/centrality"
	"github.com/gilchrisn/reaction-network-analysis/pkg/clusters"
	"github.com/gilchrisn/reaction-network-analysis/pkg/comparison"
	"github.com/gilchrisn/reaction-network-analysis/pkg/correlation"
	"github.com/gilchrisn/reaction-network-analysis/pkg/degree"
	"github.com/gilchrisn/reaction-network-analysis/pkg/fragmentation"
	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
	"github.com/gilchrisn/reaction-network-analysis/pkg/properties"
)

// NetworkSummary describes the network an analysis ran on
type NetworkSummary struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// ImportantReport holds the importance rankings
type ImportantReport struct {
	Degree      *centrality.Ranking `json:"degree"`
	Betweenness *centrality.Ranking `json:"betweenness"`
	PageRank    *centrality.Ranking `json:"pagerank"`
}

// PropertiesReport holds the global graph statistics
type PropertiesReport struct {
	Network           NetworkSummary          `json:"network"`
	Paths             *properties.PathStats   `json:"paths,omitempty"`
	Transitivity      float64                 `json:"transitivity"`
	AverageClustering float64                 `json:"average_clustering"`
	Omega             *properties.OmegaResult `json:"omega,omitempty"`
}

// ClustersReport holds k-core and community results
type ClustersReport struct {
	MaxCore      int                          `json:"max_core"`
	Cores        []clusters.CoreLevel         `json:"cores"`
	CoreNumbers  map[string]int               `json:"core_numbers"`
	GirvanNewman *clusters.GirvanNewmanResult `json:"girvan_newman,omitempty"`
	Louvain      *clusters.LouvainResult      `json:"louvain,omitempty"`
	Agreement    *float64                     `json:"agreement_nmi,omitempty"` // Girvan-Newman best level vs Louvain
}

// CorrelationReport holds the degree correlation statistics
type CorrelationReport struct {
	Source        string                          `json:"source"`
	Target        string                          `json:"target"`
	InOut         *correlation.InOutResult        `json:"in_out,omitempty"`
	Connectivity  []correlation.ConnectivityPoint `json:"connectivity"`
	Assortativity *float64                        `json:"assortativity,omitempty"`
}

// DominanceReport holds central point dominance
type DominanceReport struct {
	CentralPointDominance float64 `json:"central_point_dominance"`
}

// Report is the result of one command. Only the field matching Kind is set.
// Statistics that lacked data but did not invalidate the command are listed in Warnings.
type Report struct {
	Kind          string                `json:"kind"`
	Network       NetworkSummary        `json:"network"`
	Duration      time.Duration         `json:"duration_ns"`
	Warnings      []string              `json:"warnings,omitempty"`
	Fragmentation *fragmentation.Result `json:"fragmentation,omitempty"`
	Important     *ImportantReport      `json:"important,omitempty"`
	Degree        *degree.Analysis      `json:"degree,omitempty"`
	Properties    *PropertiesReport     `json:"properties,omitempty"`
	Clusters      *ClustersReport       `json:"clusters,omitempty"`
	Correlation   *CorrelationReport    `json:"correlation,omitempty"`
	Dominance     *DominanceReport      `json:"dominance,omitempty"`
	Comparison    *comparison.Report    `json:"comparison,omitempty"`
	Merge         *fragmentation.Result `json:"merge,omitempty"`
}

// Runner executes commands against one reaction network
type Runner struct {
	graph  *network.ReactionNetwork
	logger zerolog.Logger
}

// NewRunner creates a runner for g
func NewRunner(g *network.ReactionNetwork, logger zerolog.Logger) *Runner {
	return &Runner{graph: g, logger: logger}
}

// Run executes cmd. Validation and insufficient-data failures of the main statistic
// are returned as errors; ctx bounds the iterative analyses.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Report, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	g := r.graph
	if cmd.MergeParallel && cmd.Kind.degreeBased() {
		g = g.MergeParallel()
	}

	start := time.Now()
	report := &Report{
		Kind:    cmd.Kind.String(),
		Network: NetworkSummary{Nodes: g.NumNodes(), Edges: g.NumEdges()},
	}
	r.logger.Info().
		Str("command", report.Kind).
		Int("nodes", report.Network.Nodes).
		Int("edges", report.Network.Edges).
		Msg("Running analysis")

	var err error
	switch cmd.Kind {
	case KindFragmentation:
		report.Fragmentation, err = fragmentation.Analyze(r.graph, cmd.Fragmentation.Mode)
	case KindImportant:
		report.Important, err = r.important(g, cmd.Important)
	case KindDegree:
		report.Degree, err = degree.Analyze(g, cmd.Degree.Kind, cmd.Degree.Fit)
	case KindProperties:
		report.Properties, err = r.properties(ctx, cmd.Properties, report)
	case KindClusters:
		report.Clusters, err = r.clusters(ctx, cmd.Clusters, report)
	case KindCorrelation:
		report.Correlation, err = r.correlation(g, cmd.Correlation, report)
	case KindDominance:
		var cpd float64
		if cpd, err = centrality.CentralPointDominance(g); err == nil {
			report.Dominance = &DominanceReport{CentralPointDominance: cpd}
		}
	case KindCompare:
		report.Comparison, err = comparison.Compare(r.graph, cmd.Compare.Other, cmd.Compare.Important)
	case KindMerge:
		merged := network.Union(r.graph, cmd.Merge.Other)
		report.Network = NetworkSummary{Nodes: merged.NumNodes(), Edges: merged.NumEdges()}
		report.Merge, err = fragmentation.Analyze(merged, cmd.Merge.Mode)
	}
	if err != nil {
		r.logger.Error().Err(err).Str("command", report.Kind).Msg("Analysis failed")
		return nil, fmt.Errorf("%s analysis failed: %w", report.Kind, err)
	}

	report.Duration = time.Since(start)
	r.logger.Info().
		Str("command", report.Kind).
		Dur("duration", report.Duration).
		Int("warnings", len(report.Warnings)).
		Msg("Analysis completed")
	return report, nil
}

func (r *Runner) important(g *network.ReactionNetwork, p *ImportantParams) (*ImportantReport, error) {
	byDegree, err := centrality.DegreeRanking(g, p.TopK)
	if err != nil {
		return nil, err
	}
	byBetweenness, err := centrality.BetweennessRanking(g, p.TopK, p.Centrality)
	if err != nil {
		return nil, err
	}
	byPageRank, err := centrality.PageRankRanking(g, p.TopK, p.PageRank)
	if err != nil {
		return nil, err
	}
	return &ImportantReport{Degree: byDegree, Betweenness: byBetweenness, PageRank: byPageRank}, nil
}

func (r *Runner) properties(ctx context.Context, p *PropertiesParams, report *Report) (*PropertiesReport, error) {
	g := r.graph
	if p.LargestComponentOnly {
		g = fragmentation.LargestComponent(g)
	}

	out := &PropertiesReport{Network: NetworkSummary{Nodes: g.NumNodes(), Edges: g.NumEdges()}}
	var err error
	if out.Transitivity, err = properties.Transitivity(g); err != nil {
		return nil, err
	}
	if out.AverageClustering, err = properties.AverageClustering(g); err != nil {
		return nil, err
	}

	paths, err := properties.AverageShortestPath(g, p.Weighted)
	switch {
	case models.IsInsufficientData(err):
		report.Warnings = append(report.Warnings, err.Error())
	case err != nil:
		return nil, err
	default:
		out.Paths = paths
	}

	if p.Omega {
		opts := p.OmegaOptions
		opts.Logger = &r.logger
		omega, err := properties.Omega(ctx, g, opts)
		switch {
		case models.IsInsufficientData(err):
			report.Warnings = append(report.Warnings, err.Error())
		case err != nil:
			return nil, err
		default:
			out.Omega = omega
			if omega.CapReached {
				capped(report, "omega")
			}
		}
	}
	return out, nil
}

func (r *Runner) clusters(ctx context.Context, p *ClustersParams, report *Report) (*ClustersReport, error) {
	cores, err := clusters.InnermostCores(r.graph, p.CoreDepth)
	if err != nil {
		return nil, err
	}
	out := &ClustersReport{
		MaxCore:     clusters.MaxCore(r.graph),
		Cores:       cores,
		CoreNumbers: clusters.CoreNumbers(r.graph),
	}

	opts := p.GirvanNewman
	opts.Logger = &r.logger
	gn, err := clusters.GirvanNewman(ctx, r.graph, opts)
	switch {
	case models.IsInsufficientData(err):
		report.Warnings = append(report.Warnings, err.Error())
	case err != nil:
		return nil, err
	default:
		out.GirvanNewman = gn
		if gn.CapReached {
			capped(report, "girvan-newman")
		}
	}

	if p.Louvain == nil {
		return out, nil
	}
	lopts := *p.Louvain
	lopts.Logger = &r.logger
	lv, err := clusters.Louvain(ctx, r.graph, lopts)
	switch {
	case models.IsInsufficientData(err):
		report.Warnings = append(report.Warnings, err.Error())
		return out, nil
	case err != nil:
		return nil, err
	}
	out.Louvain = lv
	if lv.CapReached {
		capped(report, "louvain")
	}

	if gn != nil {
		if nmi, err := clusters.NormalizedMutualInfo(gn.Membership, lv.Membership); err == nil {
			out.Agreement = &nmi
		} else {
			report.Warnings = append(report.Warnings, err.Error())
		}
	}
	return out, nil
}

func (r *Runner) correlation(g *network.ReactionNetwork, p *CorrelationParams, report *Report) (*CorrelationReport, error) {
	points, err := correlation.AverageDegreeConnectivity(g, p.Source, p.Target)
	if err != nil {
		return nil, err
	}
	out := &CorrelationReport{Source: p.Source.String(), Target: p.Target.String(), Connectivity: points}

	if inOut, err := correlation.InOutCorrelation(g); err != nil {
		report.Warnings = append(report.Warnings, err.Error())
	} else {
		out.InOut = inOut
	}
	if a, err := correlation.Assortativity(g, p.Source, p.Target); err != nil {
		report.Warnings = append(report.Warnings, err.Error())
	} else {
		out.Assortativity = &a
	}
	return out, nil
}

// capped records that an iterative analysis returned a partial result
func capped(report *Report, analysis string) {
	report.Warnings = append(report.Warnings, fmt.Errorf("%s: %w", analysis, models.ErrIterationCap).Error())
}
