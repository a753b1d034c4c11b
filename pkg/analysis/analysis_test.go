package analysis

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

func build(t *testing.T, recs ...models.Record) *network.ReactionNetwork {
	t.Helper()
	g, err := network.Build(recs, network.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("failed to build network: %v", err)
	}
	return g
}

func sampleNetwork(t *testing.T) *network.ReactionNetwork {
	return build(t,
		models.NewRecord("glucose", "fructose", 1),
		models.NewRecord("fructose", "hmf", 1),
		models.NewRecord("hmf", "glucose", 2),
		models.NewRecord("hmf", "levulinic acid", 1),
		models.NewRecord("levulinic acid", "formic acid", 1),
		models.NewRecord("formic acid", "gvl", 3),
		models.NewRecord("gvl", "levulinic acid", 1),
		models.NewRecord("hmf", "hmf", 1),
	)
}

func TestConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.TopK() != 10 || !cfg.Weighted() || !cfg.Lowercase() {
		t.Errorf("unexpected defaults: top_k=%d weighted=%v lowercase=%v", cfg.TopK(), cfg.Weighted(), cfg.Lowercase())
	}
	if cfg.OmegaSeed() != 42 || cfg.OmegaRandomGraphs() != 3 || cfg.OmegaTimeout() != 0 {
		t.Errorf("unexpected omega defaults: seed=%d graphs=%d timeout=%v", cfg.OmegaSeed(), cfg.OmegaRandomGraphs(), cfg.OmegaTimeout())
	}
	if len(cfg.ImportantMolecules()) == 0 {
		t.Error("Expected default important molecules")
	}
	if !cfg.CollapseParallel() || cfg.CompareKMin() != 2 {
		t.Errorf("unexpected degree defaults: collapse_parallel=%v compare_k_min=%d", cfg.CollapseParallel(), cfg.CompareKMin())
	}
}

func TestConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("RNET_ANALYSIS_TOP_K", "5")
	t.Setenv("RNET_GIRVAN_NEWMAN_QUALITY", "intra-inter")

	cfg := NewConfig()
	if cfg.TopK() != 5 {
		t.Errorf("Expected top_k 5 from environment, got %d", cfg.TopK())
	}
	if cfg.GNQuality() != "intra-inter" {
		t.Errorf("Expected quality from environment, got %s", cfg.GNQuality())
	}
}

func TestConfigLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rnet.yaml")
	content := "analysis:\n  top_k: 3\nomega:\n  timeout: 2s\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := NewConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.TopK() != 3 {
		t.Errorf("Expected top_k 3, got %d", cfg.TopK())
	}
	if cfg.OmegaTimeout().Seconds() != 2 {
		t.Errorf("Expected 2s timeout, got %v", cfg.OmegaTimeout())
	}
	// untouched keys keep their defaults
	if cfg.OmegaRandomGraphs() != 3 {
		t.Errorf("Expected default random graphs, got %d", cfg.OmegaRandomGraphs())
	}
}

func TestCreateLogger(t *testing.T) {
	cfg := NewConfig()
	cfg.Set("logging.json", true)
	cfg.Set("logging.level", "warn")

	var buf bytes.Buffer
	logger := cfg.createLogger(&buf)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info to be filtered, got %s", out)
	}
	if !strings.Contains(out, `"service":"rnet"`) || !strings.Contains(out, "shown") {
		t.Errorf("Expected a warn entry with the service field, got %s", out)
	}
}

func TestParseKind(t *testing.T) {
	for k, name := range kindNames {
		got, err := ParseKind(name)
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseKind("visualise"); !models.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"dominance needs nothing", Command{Kind: KindDominance}, false},
		{"missing fragmentation", Command{Kind: KindFragmentation}, true},
		{"compare without network", Command{Kind: KindCompare, Compare: &CompareParams{}}, true},
		{"unknown kind", Command{Kind: Kind(99)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr && !models.IsValidation(err) {
				t.Errorf("Expected validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestConfigCommandRejectsBadValues(t *testing.T) {
	cfg := NewConfig()
	cfg.Set("analysis.degree_type", "sideways")
	if _, err := cfg.Command(KindDegree, nil); !models.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if _, err := cfg.Command(KindMerge, nil); !models.IsValidation(err) {
		t.Errorf("Expected validation error for merge without a network, got %v", err)
	}
}

func TestRunnerDispatch(t *testing.T) {
	g := sampleNetwork(t)
	other := build(t,
		models.NewRecord("hmf", "levulinic acid", 1),
		models.NewRecord("xylose", "furfural", 1),
	)

	cfg := NewConfig()
	cfg.Set("omega.enabled", true)
	cfg.Set("analysis.degree_type", "total")
	runner := NewRunner(g, zerolog.Nop())

	for k := range kindNames {
		t.Run(k.String(), func(t *testing.T) {
			cmd, err := cfg.Command(k, other)
			if err != nil {
				t.Fatalf("failed to build command: %v", err)
			}
			report, err := runner.Run(context.Background(), cmd)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if report.Kind != k.String() {
				t.Errorf("Expected kind %s, got %s", k, report.Kind)
			}

			set := map[Kind]bool{
				KindFragmentation: report.Fragmentation != nil,
				KindImportant:     report.Important != nil,
				KindDegree:        report.Degree != nil,
				KindProperties:    report.Properties != nil,
				KindClusters:      report.Clusters != nil,
				KindCorrelation:   report.Correlation != nil,
				KindDominance:     report.Dominance != nil,
				KindCompare:       report.Comparison != nil,
				KindMerge:         report.Merge != nil,
			}
			for kind, ok := range set {
				if ok != (kind == k) {
					t.Errorf("result for %s set=%v", kind, ok)
				}
			}
		})
	}
}

func TestRunnerMergeAndCompare(t *testing.T) {
	g := sampleNetwork(t)
	other := build(t, models.NewRecord("xylose", "furfural", 1))
	runner := NewRunner(g, zerolog.Nop())

	report, err := runner.Run(context.Background(), Command{Kind: KindMerge, Merge: &MergeParams{Other: other}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff([]int{6, 2}, report.Merge.Sizes); diff != "" {
		t.Errorf("merged component sizes mismatch (-want +got):\n%s", diff)
	}
	if report.Network.Nodes != 8 {
		t.Errorf("Expected the merged network summary, got %d nodes", report.Network.Nodes)
	}

	report, err = runner.Run(context.Background(), Command{Kind: KindCompare, Compare: &CompareParams{Other: other}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if report.Comparison.Jaccard != 0 {
		t.Errorf("Expected disjoint networks, got jaccard %f", report.Comparison.Jaccard)
	}
}

func TestRunnerEmptyNetwork(t *testing.T) {
	runner := NewRunner(build(t), zerolog.Nop())
	_, err := runner.Run(context.Background(), Command{Kind: KindImportant, Important: &ImportantParams{TopK: 3}})
	if !models.IsInsufficientData(err) {
		t.Errorf("Expected InsufficientDataError, got %v", err)
	}
}

func TestLoadNetwork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reactions.tsv")
	content := "Reactant\tProduct\tNumber of Reaction Steps\n" +
		"Glucose\tHMF\t2\n" +
		"HMF\tLevulinic acid; Formic acid\t1\n" +
		"\tHMF\t1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	cfg := NewConfig()
	if _, err := LoadNetwork(path, cfg, zerolog.Nop()); !models.IsValidation(err) {
		t.Errorf("Expected strict loading to fail with a validation error, got %v", err)
	}

	cfg.Set("input.lenient", true)
	g, err := LoadNetwork(path, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := []string{"glucose", "hmf", "levulinic acid", "formic acid"}
	if diff := cmp.Diff(want, g.Molecules()); diff != "" {
		t.Errorf("molecules mismatch (-want +got):\n%s", diff)
	}
	if g.NumEdges() != 3 {
		t.Errorf("Expected 3 reactions, got %d", g.NumEdges())
	}
}

func TestRunnerClustersAndRankings(t *testing.T) {
	runner := NewRunner(sampleNetwork(t), zerolog.Nop())
	cfg := NewConfig()

	cmd, err := cfg.Command(KindClusters, nil)
	if err != nil {
		t.Fatalf("failed to build command: %v", err)
	}
	report, err := runner.Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if report.Clusters.Louvain == nil || report.Clusters.Agreement == nil {
		t.Fatalf("Expected Louvain communities and their agreement, got %+v", report.Clusters)
	}
	if a := *report.Clusters.Agreement; a < 0 || a > 1 {
		t.Errorf("Expected agreement in [0, 1], got %f", a)
	}

	cfg.Set("louvain.enabled", false)
	cmd, _ = cfg.Command(KindClusters, nil)
	report, err = runner.Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if report.Clusters.Louvain != nil {
		t.Error("Expected Louvain to be skipped")
	}

	cmd, _ = cfg.Command(KindImportant, nil)
	report, err = runner.Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if report.Important.PageRank == nil || len(report.Important.PageRank.All) != 6 {
		t.Errorf("Expected a PageRank score for every molecule, got %+v", report.Important.PageRank)
	}
}

func TestRunnerReportsCaps(t *testing.T) {
	runner := NewRunner(sampleNetwork(t), zerolog.Nop())
	cmd, err := NewConfig().Command(KindClusters, nil)
	if err != nil {
		t.Fatalf("failed to build command: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := runner.Run(ctx, cmd)
	if err != nil {
		t.Fatalf("Expected partial results, got: %v", err)
	}
	if !report.Clusters.GirvanNewman.CapReached || !report.Clusters.Louvain.CapReached {
		t.Fatalf("Expected both community searches to be capped")
	}

	capWarnings := 0
	for _, w := range report.Warnings {
		if strings.Contains(w, models.ErrIterationCap.Error()) {
			capWarnings++
		}
	}
	if capWarnings != 2 {
		t.Errorf("Expected 2 cap warnings, got %v", report.Warnings)
	}
}

func TestRunnerCollapsesParallelReactions(t *testing.T) {
	g := build(t,
		models.NewRecord("glucose", "hmf", 1),
		models.NewRecord("glucose", "hmf", 3),
		models.NewRecord("hmf", "gvl", 1),
	)
	runner := NewRunner(g, zerolog.Nop())

	tests := []struct {
		name     string
		collapse bool
		edges    int
		hmf      float64
	}{
		{"collapsed by default", true, 2, 2},
		{"kept when disabled", false, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			if !tt.collapse {
				cfg.Set("analysis.collapse_parallel", false)
			}
			cmd, err := cfg.Command(KindImportant, nil)
			if err != nil {
				t.Fatalf("failed to build command: %v", err)
			}
			report, err := runner.Run(context.Background(), cmd)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if report.Network.Edges != tt.edges {
				t.Errorf("Expected %d edges, got %d", tt.edges, report.Network.Edges)
			}
			if got := report.Important.Degree.All["hmf"]; got != tt.hmf {
				t.Errorf("Expected hmf degree %v, got %v", tt.hmf, got)
			}
		})
	}

	// analyses that count reactions still see both
	cmd, err := NewConfig().Command(KindProperties, nil)
	if err != nil {
		t.Fatalf("failed to build command: %v", err)
	}
	report, err := runner.Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if report.Network.Edges != 3 {
		t.Errorf("Expected 3 edges for properties, got %d", report.Network.Edges)
	}
}
