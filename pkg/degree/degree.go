package degree

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// Kind selects which degree is counted
type Kind int

const (
	In Kind = iota
	Out
	Total
)

func (k Kind) String() string {
	switch k {
	case In:
		return "in"
	case Out:
		return "out"
	case Total:
		return "total"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts "in", "out" or "total" to a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "in":
		return In, nil
	case "out":
		return Out, nil
	case "total":
		return Total, nil
	}
	return In, models.ValidationError{Field: "degree_type", Row: -1, Message: "degree type must be in, out or total", Value: s}
}

// Of returns the degree of node i
func (k Kind) Of(g *network.ReactionNetwork, i int) int {
	switch k {
	case In:
		return g.InDegree(i)
	case Out:
		return g.OutDegree(i)
	}
	return g.Degree(i)
}

// Point is one entry of a degree distribution
type Point struct {
	Degree      int     `json:"degree"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
}

// Distribution is the empirical degree distribution of a network
type Distribution struct {
	Kind     string      `json:"kind"`
	NumNodes int         `json:"num_nodes"`
	Counts   map[int]int `json:"counts"` // degree -> number of nodes
	Points   []Point     `json:"points"` // ascending degree, degree 0 included
	Degrees  []int       `json:"-"`      // per node, in insertion order
}

// Compute builds the degree distribution of g
func Compute(g *network.ReactionNetwork, kind Kind) (*Distribution, error) {
	n := g.NumNodes()
	if n == 0 {
		return nil, models.InsufficientDataError{Statistic: kind.String() + "-degree distribution", Need: "at least 1 node", Have: 0}
	}

	d := &Distribution{
		Kind:     kind.String(),
		NumNodes: n,
		Counts:   make(map[int]int),
		Degrees:  make([]int, n),
	}
	for i := 0; i < n; i++ {
		k := kind.Of(g, i)
		d.Degrees[i] = k
		d.Counts[k]++
	}

	degrees := make([]int, 0, len(d.Counts))
	for k := range d.Counts {
		degrees = append(degrees, k)
	}
	sort.Ints(degrees)

	d.Points = make([]Point, len(degrees))
	for i, k := range degrees {
		d.Points[i] = Point{
			Degree:      k,
			Count:       d.Counts[k],
			Probability: float64(d.Counts[k]) / float64(n),
		}
	}
	return d, nil
}

// Nonzero returns the per-node degrees with degree-0 nodes removed, sorted ascending
func (d *Distribution) Nonzero() []int {
	out := make([]int, 0, len(d.Degrees))
	for _, k := range d.Degrees {
		if k > 0 {
			out = append(out, k)
		}
	}
	sort.Ints(out)
	return out
}

// FitOptions bounds the region of the log-log plot used for fitting
type FitOptions struct {
	KMin        int // smallest degree included (values below 1 mean 1)
	KMax        int // largest degree included, 0 for no limit
	CompareKMin int // smallest degree used by CompareDistributions
}

// Fit is a fitted power law P(k) ~ k^-Alpha
type Fit struct {
	Method    string  `json:"method"`
	Alpha     float64 `json:"alpha"`
	Intercept float64 `json:"intercept,omitempty"` // log-count intercept of the regression line
	RSquared  float64 `json:"r_squared,omitempty"`
	StdErr    float64 `json:"std_err,omitempty"`
	KMin      int     `json:"k_min"`
	Points    int     `json:"points"` // regression points or samples used
}

// FitPowerLaw fits log(count) = intercept - alpha*log(k) by least squares over the
// distinct nonzero degrees in [KMin, KMax]. It needs at least two distinct degrees.
func FitPowerLaw(d *Distribution, opts FitOptions) (*Fit, error) {
	kmin := opts.KMin
	if kmin < 1 {
		kmin = 1
	}

	xs := make([]float64, 0, len(d.Points))
	ys := make([]float64, 0, len(d.Points))
	for _, p := range d.Points {
		if p.Degree < kmin || (opts.KMax > 0 && p.Degree > opts.KMax) {
			continue
		}
		xs = append(xs, math.Log(float64(p.Degree)))
		ys = append(ys, math.Log(float64(p.Count)))
	}
	if len(xs) < 2 {
		return nil, models.InsufficientDataError{
			Statistic: d.Kind + "-degree power-law fit",
			Need:      "at least 2 distinct nonzero degree values",
			Have:      len(xs),
		}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return &Fit{
		Method:    "least-squares",
		Alpha:     -slope,
		Intercept: intercept,
		RSquared:  stat.RSquared(xs, ys, nil, intercept, slope),
		KMin:      kmin,
		Points:    len(xs),
	}, nil
}

// FitPowerLawMLE estimates alpha for discrete data with the continuous approximation
// alpha = 1 + n / sum(ln(k_i / (kmin - 1/2))) over k_i >= kmin (Clauset, Shalizi and
// Newman 2009, eq. 3.7). The estimate is reliable for kmin of a few units or more.
func FitPowerLawMLE(degrees []int, kmin int) (*Fit, error) {
	if kmin < 1 {
		kmin = 1
	}

	n := 0
	sum := 0.0
	distinct := make(map[int]bool)
	for _, k := range degrees {
		if k < kmin {
			continue
		}
		n++
		distinct[k] = true
		sum += math.Log(float64(k) / (float64(kmin) - 0.5))
	}
	if len(distinct) < 2 || sum <= 0 {
		return nil, models.InsufficientDataError{
			Statistic: "maximum-likelihood power-law fit",
			Need:      "at least 2 distinct degree values above k_min",
			Have:      len(distinct),
		}
	}

	alpha := 1 + float64(n)/sum
	return &Fit{
		Method: "mle",
		Alpha:  alpha,
		StdErr: (alpha - 1) / math.Sqrt(float64(n)),
		KMin:   kmin,
		Points: n,
	}, nil
}

// Analysis bundles a distribution with both power-law estimates and the
// comparisons against alternative distributions
type Analysis struct {
	Distribution *Distribution `json:"distribution"`
	LeastSquares *Fit          `json:"least_squares"`
	MLE          *Fit          `json:"mle,omitempty"`
	Comparisons  []Comparison  `json:"comparisons,omitempty"`
}

// Analyze computes the distribution of g and fits it. The MLE estimate and the
// distribution comparisons are best-effort and omitted when they cannot be computed.
func Analyze(g *network.ReactionNetwork, kind Kind, opts FitOptions) (*Analysis, error) {
	d, err := Compute(g, kind)
	if err != nil {
		return nil, err
	}
	ls, err := FitPowerLaw(d, opts)
	if err != nil {
		return nil, err
	}

	a := &Analysis{Distribution: d, LeastSquares: ls}
	if mle, err := FitPowerLawMLE(d.Nonzero(), opts.KMin); err == nil {
		a.MLE = mle
	}
	kmin := opts.CompareKMin
	if kmin < 1 {
		kmin = DefaultCompareKMin
	}
	if cmp, err := CompareDistributions(d.Nonzero(), kmin); err == nil {
		a.Comparisons = cmp
	}
	return a, nil
}
