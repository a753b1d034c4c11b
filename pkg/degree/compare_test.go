package degree

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
)

func repeatCounts(from, to int, count func(k int) float64) []int {
	out := make([]int, 0)
	for k := from; k <= to; k++ {
		for c := 0; c < int(math.Round(count(k))); c++ {
			out = append(out, k)
		}
	}
	return out
}

func byAlternative(cs []Comparison) map[string]Comparison {
	out := make(map[string]Comparison, len(cs))
	for _, c := range cs {
		out[c.Alternative] = c
	}
	return out
}

func TestCompareDistributionsPowerLawData(t *testing.T) {
	degrees := repeatCounts(3, 3000, func(k int) float64 { return 20000 * math.Pow(float64(k), -2.5) })

	cs, err := CompareDistributions(degrees, 3)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	got := make([]string, len(cs))
	for i, c := range cs {
		got[i] = c.Alternative
	}
	want := []string{Exponential, Lognormal, TruncatedPowerLaw, StretchedExponential}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("alternatives mismatch (-want +got):\n%s", diff)
	}

	for _, c := range cs {
		if c.P < 0 || c.P > 1 {
			t.Errorf("%s: p-value %f outside [0, 1]", c.Alternative, c.P)
		}
	}

	exp := byAlternative(cs)[Exponential]
	if exp.R <= 0 || exp.NormalizedR <= 0 {
		t.Errorf("Expected the power law to beat the exponential, got R=%f normalized=%f", exp.R, exp.NormalizedR)
	}
	if exp.P > 0.01 {
		t.Errorf("Expected a significant comparison, got p=%f", exp.P)
	}
	if tpl := byAlternative(cs)[TruncatedPowerLaw]; !tpl.Nested {
		t.Error("Expected the truncated power law to be marked nested")
	}
}

func TestCompareDistributionsExponentialData(t *testing.T) {
	degrees := repeatCounts(2, 40, func(k int) float64 { return 5000 * math.Exp(-0.5*float64(k-2)) })

	cs, err := CompareDistributions(degrees, 2)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	exp, ok := byAlternative(cs)[Exponential]
	if !ok {
		t.Fatal("Expected an exponential comparison")
	}
	if exp.R >= 0 {
		t.Errorf("Expected the exponential to beat the power law, got R=%f", exp.R)
	}
	if math.Abs(exp.Parameters["lambda"]-0.5) > 0.1 {
		t.Errorf("Expected lambda near 0.5, got %f", exp.Parameters["lambda"])
	}
}

func TestCompareDistributionsInsufficientData(t *testing.T) {
	if _, err := CompareDistributions([]int{1, 1, 2, 2}, 2); !models.IsInsufficientData(err) {
		t.Errorf("Expected InsufficientDataError, got %v", err)
	}
}

func TestVuong(t *testing.T) {
	same := []float64{-1, -2, -3}
	c := vuong(same, same, false)
	if c.R != 0 || c.NormalizedR != 0 || c.P != 1 {
		t.Errorf("Expected a null comparison for equal likelihoods, got %+v", c)
	}

	// differences 1, 2, 3: R = 6, population sd = sqrt(2/3), normalized = 6 / (sqrt(3) * sqrt(2/3)) = 3*sqrt(2)
	c = vuong([]float64{0, 0, 0}, []float64{-1, -2, -3}, false)
	if c.R != 6 {
		t.Errorf("Expected R=6, got %f", c.R)
	}
	if math.Abs(c.NormalizedR-3*math.Sqrt2) > 1e-12 {
		t.Errorf("Expected normalized R %f, got %f", 3*math.Sqrt2, c.NormalizedR)
	}
	if want := math.Erfc(3); math.Abs(c.P-want) > 1e-12 {
		t.Errorf("Expected p=%g, got %g", want, c.P)
	}

	// nested: P(chi2_1 > 2|R|) = erfc(sqrt(|R|))
	c = vuong([]float64{0, 0, 0}, []float64{-1, -2, -3}, true)
	if want := math.Erfc(math.Sqrt(6)); math.Abs(c.P-want) > 1e-9 {
		t.Errorf("Expected nested p=%g, got %g", want, c.P)
	}
}

func TestUpperGamma(t *testing.T) {
	x := 1.0
	half := math.Sqrt(math.Pi) * math.Erfc(1)
	tests := []struct {
		s    float64
		want float64
	}{
		{0.5, half},
		{-0.5, 2 * (math.Exp(-x) - half)},
		{1, math.Exp(-x)},
	}
	for _, tt := range tests {
		if got := upperGamma(tt.s, x); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("upperGamma(%v, %v) = %v, want %v", tt.s, x, got, tt.want)
		}
	}
}
