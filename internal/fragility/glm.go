package fragility

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/asfrava/asfrava/internal/ida"
)

// logOffset keeps the log transform finite at zero intensity.
const logOffset = 1e-6

const (
	irlsMaxIter     = 50
	irlsTol         = 1e-8
	irlsMaxHalvings = 30
)

// fitGLM fits a binomial regression of each damage-state indicator on the
// log intensity measure, with logit or probit link, by iteratively
// reweighted least squares.
func fitGLM(table *ida.EDPTable, cfg Config, imRange []float64) (*Result, error) {
	link := cfg.Link
	if link == "" {
		link = Logit
	}
	if link != Logit && link != Probit {
		return nil, fmt.Errorf("unknown link function %q (want Logit or Probit)", link)
	}

	logIM := logTransform(intensities(table))
	logRange := logTransform(imRange)

	res := &Result{Method: GLM, IMRange: imRange}
	for _, state := range DamageStates {
		y := stateFlags(table, state)
		intercept, slope, converged, err := irls(logIM, y, link)
		if err != nil {
			return nil, fmt.Errorf("state %s: %w", state, err)
		}

		probs := make([]float64, len(logRange))
		for i, x := range logRange {
			probs[i] = inverseLink(link, intercept+slope*x)
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

// irls runs iteratively reweighted least squares for the two-parameter
// binomial model eta = b0 + b1*x. Each proposed step is accepted only if it
// lowers the deviance, halving the step otherwise; when no fraction of the
// step improves anymore the likelihood is stationary (separated or
// near-separated data) and the last improving iterate is returned.
func irls(x, y []float64, link Link) (b0, b1 float64, converged bool, err error) {
	n := len(x)
	if n == 0 {
		return 0, 0, false, fmt.Errorf("no observations")
	}

	dev := deviance(x, y, link, b0, b1)
	for iter := 0; iter < irlsMaxIter; iter++ {
		// Accumulate the weighted normal equations X'WX b = X'Wz.
		var s00, s01, s11, t0, t1 float64
		for i := 0; i < n; i++ {
			eta := b0 + b1*x[i]
			muHat := clamp(inverseLink(link, eta), probEpsilon, 1-probEpsilon)
			deriv := math.Max(linkDerivative(link, eta, muHat), probEpsilon)

			w := deriv * deriv / (muHat * (1 - muHat))
			z := eta + (y[i]-muHat)/deriv

			s00 += w
			s01 += w * x[i]
			s11 += w * x[i] * x[i]
			t0 += w * z
			t1 += w * x[i] * z
		}

		a := mat.NewDense(2, 2, []float64{s00, s01, s01, s11})
		b := mat.NewVecDense(2, []float64{t0, t1})
		var sol mat.VecDense
		if err := sol.SolveVec(a, b); err != nil {
			return 0, 0, false, fmt.Errorf("singular weighted system: %w", err)
		}

		step0, step1 := sol.AtVec(0)-b0, sol.AtVec(1)-b1
		frac := 1.0
		var next float64
		improved := false
		for k := 0; k < irlsMaxHalvings; k++ {
			next = deviance(x, y, link, b0+frac*step0, b1+frac*step1)
			if next < dev {
				improved = true
				break
			}
			frac /= 2
		}
		if !improved {
			return b0, b1, true, nil
		}

		b0, b1 = b0+frac*step0, b1+frac*step1
		if dev-next < irlsTol*(math.Abs(next)+1) {
			return b0, b1, true, nil
		}
		dev = next
	}
	return b0, b1, false, fmt.Errorf("%w: IRLS hit iteration cap", ErrNoConvergence)
}

// deviance is -2 times the Bernoulli log-likelihood at (b0, b1).
func deviance(x, y []float64, link Link, b0, b1 float64) float64 {
	var d float64
	for i := range x {
		mu := clamp(inverseLink(link, b0+b1*x[i]), probEpsilon, 1-probEpsilon)
		if y[i] > 0.5 {
			d -= 2 * math.Log(mu)
		} else {
			d -= 2 * math.Log(1-mu)
		}
	}
	return d
}

// inverseLink maps the linear predictor back to a probability.
func inverseLink(link Link, eta float64) float64 {
	if link == Probit {
		return stdNormal.CDF(eta)
	}
	return 1 / (1 + math.Exp(-eta))
}

// linkDerivative is d mu / d eta at the linear predictor.
func linkDerivative(link Link, eta, muHat float64) float64 {
	if link == Probit {
		return stdNormal.Prob(eta)
	}
	return muHat * (1 - muHat)
}

func logTransform(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Log(x + logOffset)
	}
	return out
}
