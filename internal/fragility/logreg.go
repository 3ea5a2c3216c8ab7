package fragility

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/asfrava/asfrava/internal/ida"
)

const (
	newtonMaxIter = 100
	newtonTol     = 1e-8
)

// scaler standardizes a feature to zero mean and unit variance.
type scaler struct {
	mean float64
	std  float64
}

func fitScaler(v []float64) scaler {
	mean := stat.Mean(v, nil)
	var ss float64
	for _, x := range v {
		d := x - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(v)))
	if std == 0 {
		std = 1
	}
	return scaler{mean: mean, std: std}
}

func (s scaler) transform(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = (x - s.mean) / s.std
	}
	return out
}

// fitLogreg fits an L2-regularized logistic regression of each damage-state
// indicator on the standardized log intensity measure. The regulation level
// sets the inverse-regularization constant; the intercept is unpenalized.
// The probability curve is predicted on the IM range standardized by its own
// scaler, mirroring the reference behavior of fitting the two scalers
// independently.
func fitLogreg(table *ida.EDPTable, cfg Config, imRange []float64) (*Result, error) {
	lambda := 1 / cfg.Regulation.CValue()

	logIM := logTransform(intensities(table))
	xs := fitScaler(logIM).transform(logIM)

	logRange := logTransform(imRange)
	rangeScaled := fitScaler(logRange).transform(logRange)

	res := &Result{Method: LogregML, IMRange: imRange}
	for _, state := range DamageStates {
		y := stateFlags(table, state)
		intercept, slope, converged, err := newtonRidgeLogistic(xs, y, lambda)
		if err != nil {
			return nil, fmt.Errorf("state %s: %w", state, err)
		}

		probs := make([]float64, len(rangeScaled))
		for i, x := range rangeScaled {
			probs[i] = inverseLink(Logit, intercept+slope*x)
		}
		res.Fits = append(res.Fits, StateFit{
			State:         state,
			Intercept:     intercept,
			Slope:         slope,
			Converged:     converged,
			Probabilities: probs,
		})
	}
	return res, nil
}

// newtonRidgeLogistic minimizes the penalized logistic loss
// sum(logloss) + lambda/2 * slope^2 by damped Newton iteration.
func newtonRidgeLogistic(x, y []float64, lambda float64) (b0, b1 float64, converged bool, err error) {
	n := len(x)
	if n == 0 {
		return 0, 0, false, fmt.Errorf("no observations")
	}

	for iter := 0; iter < newtonMaxIter; iter++ {
		var g0, g1, h00, h01, h11 float64
		for i := 0; i < n; i++ {
			muHat := inverseLink(Logit, b0+b1*x[i])
			r := muHat - y[i]
			w := math.Max(muHat*(1-muHat), probEpsilon)

			g0 += r
			g1 += r * x[i]
			h00 += w
			h01 += w * x[i]
			h11 += w * x[i] * x[i]
		}
		g1 += lambda * b1
		h11 += lambda

		h := mat.NewDense(2, 2, []float64{h00, h01, h01, h11})
		g := mat.NewVecDense(2, []float64{g0, g1})
		var step mat.VecDense
		if err := step.SolveVec(h, g); err != nil {
			return 0, 0, false, fmt.Errorf("singular hessian: %w", err)
		}

		b0 -= step.AtVec(0)
		b1 -= step.AtVec(1)
		if math.Abs(step.AtVec(0))+math.Abs(step.AtVec(1)) < newtonTol {
			return b0, b1, true, nil
		}
	}
	return b0, b1, false, fmt.Errorf("%w: Newton iteration hit cap", ErrNoConvergence)
}
