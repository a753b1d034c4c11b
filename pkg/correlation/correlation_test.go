package correlation

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gilchrisn/reaction-network-analysis/pkg/degree"
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

// star is hub -> x, y, z plus x -> y
func star(t *testing.T) *network.ReactionNetwork {
	return build(t,
		models.NewRecord("hub", "x", 1),
		models.NewRecord("hub", "y", 1),
		models.NewRecord("hub", "z", 1),
		models.NewRecord("x", "y", 1),
	)
}

func TestInOutCorrelation(t *testing.T) {
	g := build(t,
		models.NewRecord("A", "B", 1),
		models.NewRecord("A", "C", 1),
		models.NewRecord("B", "C", 1),
	)
	result, err := InOutCorrelation(g)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if math.Abs(result.R+1) > 1e-9 {
		t.Errorf("Expected r = -1, got %f", result.R)
	}
}

func TestInOutCorrelationInsufficient(t *testing.T) {
	tests := []struct {
		name string
		recs []models.Record
	}{
		{"single node", []models.Record{models.NewRecord("A", "A", 1)}},
		{"zero variance", []models.Record{
			models.NewRecord("A", "B", 1),
			models.NewRecord("B", "C", 1),
			models.NewRecord("C", "A", 1),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := InOutCorrelation(build(t, tt.recs...)); !models.IsInsufficientData(err) {
				t.Errorf("Expected InsufficientDataError, got %v", err)
			}
		})
	}
}

func TestAverageDegreeConnectivity(t *testing.T) {
	points, err := AverageDegreeConnectivity(star(t), degree.Out, degree.Out)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := []ConnectivityPoint{
		{K: 0, AverageNeighbour: 0, Nodes: 2},
		{K: 1, AverageNeighbour: 0, Nodes: 1},
		{K: 3, AverageNeighbour: 1.0 / 3.0, Nodes: 1},
	}
	if diff := cmp.Diff(want, points, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("connectivity mismatch (-want +got):\n%s", diff)
	}

	in, _ := AverageDegreeConnectivity(star(t), degree.In, degree.In)
	// y has predecessors hub (in 0) and x (in 1)
	for _, p := range in {
		if p.K == 2 && math.Abs(p.AverageNeighbour-0.5) > 1e-9 {
			t.Errorf("Expected k_nn(2) = 0.5, got %f", p.AverageNeighbour)
		}
	}
}

func TestAssortativity(t *testing.T) {
	r, err := Assortativity(star(t), degree.Out, degree.In)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if want := -1 / math.Sqrt(3); math.Abs(r-want) > 1e-9 {
		t.Errorf("Expected r = %f, got %f", want, r)
	}

	single := build(t, models.NewRecord("A", "B", 1))
	if _, err := Assortativity(single, degree.Out, degree.In); !models.IsInsufficientData(err) {
		t.Errorf("Expected InsufficientDataError, got %v", err)
	}
}
