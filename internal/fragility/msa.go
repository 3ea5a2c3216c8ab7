package fragility

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/asfrava/asfrava/internal/ida"
)

// probEpsilon keeps the Bernoulli likelihood finite at the extremes.
const probEpsilon = 1e-10

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// fitMSA groups the EDP rows by intensity level, computes the empirical
// exceedance fraction per level and damage state, and fits a two-parameter
// lognormal fragility function by maximizing the Bernoulli likelihood with a
// derivative-free simplex search.
func fitMSA(table *ida.EDPTable, cfg Config, imRange []float64) (*Result, error) {
	grid := gridScales(cfg)
	numRecords := len(table.Records())
	if numRecords == 0 {
		return nil, fmt.Errorf("no ground-motion records in EDP table")
	}

	res := &Result{Method: MSA, IMRange: imRange}
	for _, state := range DamageStates {
		levels, counts := exceedanceCounts(table, state)
		fracs := make([]float64, len(grid))
		for i, im := range grid {
			fracs[i] = interp(im, levels, counts) / float64(numRecords)
		}

		mu, sigma, converged, err := fitLognormalMLE(grid, fracs)
		if err != nil {
			return nil, fmt.Errorf("state %s: %w", state, err)
		}

		probs := make([]float64, len(imRange))
		for i, im := range imRange {
			probs[i] = stdNormal.CDF((math.Log(im) - mu) / sigma)
		}
		res.Fits = append(res.Fits, StateFit{
			State:         state,
			Mu:            mu,
			Sigma:         sigma,
			Converged:     converged,
			Probabilities: probs,
			ScatterIM:     grid,
			ScatterFrac:   fracs,
		})
	}
	return res, nil
}

// gridScales reproduces the sweep's scale sequence for empirical grouping.
func gridScales(cfg Config) []float64 {
	var grid []float64
	for i := 0; ; i++ {
		s := math.Round((cfg.MinScale+float64(i)*cfg.Increment)*100) / 100
		if s > cfg.MaxScale+1e-9 {
			break
		}
		grid = append(grid, s)
	}
	return grid
}

// exceedanceCounts sums the damage-state flags per distinct intensity level,
// sorted by level.
func exceedanceCounts(table *ida.EDPTable, state string) (levels, counts []float64) {
	flags := stateFlags(table, state)
	ims := intensities(table)

	sums := make(map[float64]float64)
	for i, im := range ims {
		sums[im] += flags[i]
	}
	levels = make([]float64, 0, len(sums))
	for im := range sums {
		levels = append(levels, im)
	}
	sort.Float64s(levels)
	counts = make([]float64, len(levels))
	for i, im := range levels {
		counts[i] = sums[im]
	}
	return levels, counts
}

// interp linearly interpolates y(x) over the sorted xs, clamping outside the
// range.
func interp(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	i := sort.SearchFloat64s(xs, x)
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// fitLognormalMLE minimizes the negative Bernoulli log-likelihood of
// P(IM) = Phi((ln IM - mu)/sigma) over (mu, sigma) with Nelder-Mead from the
// conventional (0, 1) start.
func fitLognormalMLE(ims, fracs []float64) (mu, sigma float64, converged bool, err error) {
	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			return negLogLikelihood(theta[0], theta[1], ims, fracs)
		},
	}
	result, optErr := optimize.Minimize(problem, []float64{0, 1}, nil, &optimize.NelderMead{})
	if optErr != nil {
		return 0, 0, false, fmt.Errorf("%w: %v", ErrNoConvergence, optErr)
	}
	converged = result.Status == optimize.FunctionConvergence ||
		result.Status == optimize.StepConvergence ||
		result.Status == optimize.GradientThreshold
	if !converged {
		return result.X[0], result.X[1], false,
			fmt.Errorf("%w: optimizer stopped with status %v", ErrNoConvergence, result.Status)
	}
	return result.X[0], result.X[1], true, nil
}

func negLogLikelihood(mu, sigma float64, ims, fracs []float64) float64 {
	var ll float64
	for i, im := range ims {
		p := stdNormal.CDF((math.Log(im) - mu) / sigma)
		p = clamp(p, probEpsilon, 1-probEpsilon)
		y := fracs[i]
		ll += y*math.Log(p) + (1-y)*math.Log(1-p)
	}
	return -ll
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
