package degree

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
)

// Alternative distributions a power law is tested against
const (
	Exponential          = "exponential"
	Lognormal            = "lognormal"
	TruncatedPowerLaw    = "truncated_power_law"
	StretchedExponential = "stretched_exponential"
)

// DefaultCompareKMin is the smallest degree used by distribution comparisons
const DefaultCompareKMin = 2

const maxLikelihoodEvaluations = 5000

// Comparison is a log-likelihood ratio test of the power law against one
// alternative. Positive R favours the power law.
type Comparison struct {
	Alternative string             `json:"alternative"`
	R           float64            `json:"r"`
	NormalizedR float64            `json:"normalized_r"`
	P           float64            `json:"p"`
	Nested      bool               `json:"nested,omitempty"` // alternative contains the power law, P is a chi-squared test
	Parameters  map[string]float64 `json:"parameters"`
}

// CompareDistributions fits a power law and each alternative to the degrees
// k >= kmin and compares them by log-likelihood ratio (Vuong's test, Clauset,
// Shalizi and Newman 2009, sec. 5). Degrees are treated as continuous values
// above kmin - 1/2, the same approximation FitPowerLawMLE uses. An alternative
// whose fit fails is left out.
func CompareDistributions(degrees []int, kmin int) ([]Comparison, error) {
	if kmin < 1 {
		kmin = 1
	}
	pl, err := FitPowerLawMLE(degrees, kmin)
	if err != nil {
		return nil, err
	}

	xmin := float64(kmin) - 0.5
	xs := make([]float64, 0, pl.Points)
	for _, k := range degrees {
		if k >= kmin {
			xs = append(xs, float64(k))
		}
	}

	alpha := pl.Alpha
	plLL := logLikelihoods(xs, func(x float64) float64 {
		return math.Log(alpha-1) - math.Log(xmin) - alpha*math.Log(x/xmin)
	})

	fits := []func([]float64, float64, float64) (*altFit, error){
		fitExponential,
		fitLognormal,
		fitTruncatedPowerLaw,
		fitStretchedExponential,
	}
	out := make([]Comparison, 0, len(fits))
	for _, fit := range fits {
		alt, err := fit(xs, xmin, alpha)
		if err != nil {
			continue
		}
		c := vuong(plLL, logLikelihoods(xs, alt.logProb), alt.nested)
		c.Alternative = alt.name
		c.Parameters = alt.params
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, models.InsufficientDataError{Statistic: "distribution comparison", Need: "an alternative that can be fitted", Have: 0}
	}
	return out, nil
}

type altFit struct {
	name    string
	params  map[string]float64
	nested  bool
	logProb func(x float64) float64
}

func logLikelihoods(xs []float64, logProb func(float64) float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = logProb(x)
	}
	return out
}

// vuong compares per-sample log-likelihoods l1 against l2
func vuong(l1, l2 []float64, nested bool) Comparison {
	n := float64(len(l1))
	diff := make([]float64, len(l1))
	r := 0.0
	for i := range l1 {
		diff[i] = l1[i] - l2[i]
		r += diff[i]
	}
	_, variance := stat.PopMeanVariance(diff, nil)
	sigma := math.Sqrt(variance)

	c := Comparison{R: r, Nested: nested, P: 1}
	if sigma > 0 {
		c.NormalizedR = r / (math.Sqrt(n) * sigma)
		c.P = 2 * distuv.UnitNormal.CDF(-math.Abs(c.NormalizedR))
	}
	if nested {
		c.P = distuv.ChiSquared{K: 1}.Survival(2 * math.Abs(r))
	}
	return c
}

func fitExponential(xs []float64, xmin, _ float64) (*altFit, error) {
	shifted := make([]float64, len(xs))
	for i, x := range xs {
		shifted[i] = x - xmin
	}
	var e distuv.Exponential
	e.Fit(shifted, nil)
	if !(e.Rate > 0) || math.IsInf(e.Rate, 0) {
		return nil, models.InsufficientDataError{Statistic: "exponential fit", Need: "positive mean above k_min", Have: len(xs)}
	}
	return &altFit{
		name:    Exponential,
		params:  map[string]float64{"lambda": e.Rate},
		logProb: func(x float64) float64 { return e.LogProb(x - xmin) },
	}, nil
}

func fitLognormal(xs []float64, xmin, _ float64) (*altFit, error) {
	logs := make([]float64, len(xs))
	for i, x := range xs {
		logs[i] = math.Log(x)
	}
	mu, sigma := stat.MeanStdDev(logs, nil)
	if !(sigma > 0) {
		sigma = 1
	}

	dist := func(p []float64) distuv.LogNormal { return distuv.LogNormal{Mu: p[0], Sigma: math.Exp(p[1])} }
	logProb := func(p []float64) func(float64) float64 {
		d := dist(p)
		norm := math.Log(d.Survival(xmin))
		return func(x float64) float64 { return d.LogProb(x) - norm }
	}
	p, err := maximize(xs, []float64{mu, math.Log(sigma)}, logProb)
	if err != nil {
		return nil, err
	}
	d := dist(p)
	return &altFit{
		name:    Lognormal,
		params:  map[string]float64{"mu": d.Mu, "sigma": d.Sigma},
		logProb: logProb(p),
	}, nil
}

// truncated power law p(x) ~ x^-alpha e^(-lambda x), normalised by
// lambda^(1-alpha) / Γ(1-alpha, lambda xmin)
func fitTruncatedPowerLaw(xs []float64, xmin, alpha float64) (*altFit, error) {
	mean := stat.Mean(xs, nil)
	params := func(p []float64) (float64, float64) { return 1 + math.Exp(p[0]), math.Exp(p[1]) }
	logProb := func(p []float64) func(float64) float64 {
		a, lambda := params(p)
		norm := (1-a)*math.Log(lambda) - math.Log(upperGamma(1-a, lambda*xmin))
		return func(x float64) float64 { return norm - a*math.Log(x) - lambda*x }
	}

	start := []float64{math.Log(math.Max(alpha-1, 0.05)), math.Log(0.1 / mean)}
	p, err := maximize(xs, start, logProb)
	if err != nil {
		return nil, err
	}
	a, lambda := params(p)
	return &altFit{
		name:    TruncatedPowerLaw,
		params:  map[string]float64{"alpha": a, "lambda": lambda},
		nested:  true,
		logProb: logProb(p),
	}, nil
}

// stretched exponential, a Weibull conditioned on x >= xmin
func fitStretchedExponential(xs []float64, xmin, _ float64) (*altFit, error) {
	mean := stat.Mean(xs, nil)
	dist := func(p []float64) distuv.Weibull { return distuv.Weibull{K: math.Exp(p[0]), Lambda: math.Exp(p[1])} }
	logProb := func(p []float64) func(float64) float64 {
		w := dist(p)
		norm := w.LogSurvival(xmin)
		return func(x float64) float64 { return w.LogProb(x) - norm }
	}

	p, err := maximize(xs, []float64{0, math.Log(mean)}, logProb)
	if err != nil {
		return nil, err
	}
	w := dist(p)
	return &altFit{
		name:    StretchedExponential,
		params:  map[string]float64{"beta": w.K, "lambda": 1 / w.Lambda},
		logProb: logProb(p),
	}, nil
}

// maximize finds the parameters maximising the total log-likelihood of xs with
// Nelder-Mead, starting from start
func maximize(xs, start []float64, logProb func(p []float64) func(float64) float64) ([]float64, error) {
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			f := logProb(p)
			total := 0.0
			for _, x := range xs {
				total += f(x)
			}
			if math.IsNaN(total) || math.IsInf(total, 0) {
				return math.Inf(1)
			}
			return -total
		},
	}
	res, err := optimize.Minimize(problem, start, &optimize.Settings{FuncEvaluations: maxLikelihoodEvaluations}, &optimize.NelderMead{})
	if res == nil {
		return nil, err
	}
	if math.IsInf(res.F, 0) || math.IsNaN(res.F) {
		return nil, models.InsufficientDataError{Statistic: "likelihood fit", Need: "a finite likelihood", Have: len(xs)}
	}
	return res.X, nil
}

// upperGamma is Γ(s, x) for x > 0 and any s, using
// Γ(s, x) = (Γ(s+1, x) - x^s e^-x) / s below zero
func upperGamma(s, x float64) float64 {
	if s > 0 {
		return math.Gamma(s) * mathext.GammaIncRegComp(s, x)
	}
	if s < -50 {
		return math.NaN()
	}
	if s == math.Trunc(s) {
		s -= 1e-9
	}
	return (upperGamma(s+1, x) - math.Pow(x, s)*math.Exp(-x)) / s
}
