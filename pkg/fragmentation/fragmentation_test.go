package fragmentation

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

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

func TestWeakComponentsScenario(t *testing.T) {
	g := build(t,
		models.NewRecord("A", "B", 1),
		models.NewRecord("B", "C", 1),
		models.NewRecord("D", "E", 1),
	)

	result, err := Analyze(g, Weak)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := [][]string{{"A", "B", "C"}, {"D", "E"}}
	got := make([][]string, len(result.Components))
	for i, c := range result.Components {
		got[i] = c.Molecules
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[int]int{3: 1, 2: 1}, result.SizeDistribution); diff != "" {
		t.Errorf("size distribution mismatch (-want +got):\n%s", diff)
	}
	if result.IsConnected {
		t.Error("Expected graph to be fragmented")
	}
	if result.LargestFraction != 0.6 {
		t.Errorf("Expected largest fraction 0.6, got %f", result.LargestFraction)
	}
}

func TestStrongComponents(t *testing.T) {
	g := build(t,
		models.NewRecord("A", "B", 1),
		models.NewRecord("B", "A", 1),
		models.NewRecord("B", "C", 1),
		models.NewRecord("C", "C", 1),
	)

	comps := Components(g, Strong)
	want := [][]int{{0, 1}, {2}}
	if diff := cmp.Diff(want, comps); diff != "" {
		t.Errorf("strong components mismatch (-want +got):\n%s", diff)
	}
	if got := Components(g, Weak); len(got) != 1 {
		t.Errorf("Expected 1 weak component, got %d", len(got))
	}
}

func TestComponentsPartitionNodes(t *testing.T) {
	recs := make([]models.Record, 0)
	for i := 0; i < 30; i++ {
		recs = append(recs, models.NewRecord(fmt.Sprintf("m%d", i%17), fmt.Sprintf("m%d", (i*7)%23), 1))
	}
	g := build(t, recs...)

	for _, mode := range []Mode{Weak, Strong} {
		t.Run(mode.String(), func(t *testing.T) {
			seen := make(map[int]int)
			total := 0
			for _, c := range Components(g, mode) {
				total += len(c)
				for _, n := range c {
					seen[n]++
				}
			}
			if total != g.NumNodes() {
				t.Errorf("Expected sizes to sum to %d, got %d", g.NumNodes(), total)
			}
			for n := 0; n < g.NumNodes(); n++ {
				if seen[n] != 1 {
					t.Errorf("node %d appears %d times", n, seen[n])
				}
			}
		})
	}
}

func TestLargestComponent(t *testing.T) {
	g := build(t,
		models.NewRecord("x", "y", 1),
		models.NewRecord("A", "B", 1),
		models.NewRecord("B", "C", 1),
	)
	lcc := LargestComponent(g)
	if diff := cmp.Diff([]string{"A", "B", "C"}, lcc.Molecules()); diff != "" {
		t.Errorf("largest component mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	g := build(t)
	if _, err := Analyze(g, Weak); !models.IsInsufficientData(err) {
		t.Errorf("Expected InsufficientDataError, got %v", err)
	}
	if comps := Components(g, Weak); len(comps) != 0 {
		t.Errorf("Expected no components, got %d", len(comps))
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("strong"); err != nil || m != Strong {
		t.Errorf("Expected Strong, got %v (%v)", m, err)
	}
	if _, err := ParseMode("sideways"); !models.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
