package curve

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoConvergence is returned when the equal-area search exhausts its
// iteration cap without matching the measured area.
var ErrNoConvergence = errors.New("idealization search did not converge")

// Method selects the idealization rule applied to the capacity curve.
type Method string

const (
	// EPP idealizes as elastic-perfectly-plastic: the yield plateau carries
	// the ultimate force.
	EPP Method = "EPP"
	// SH idealizes with strain hardening: the yield point is interpolated on
	// the measured curve and scaled by the hardening ratio.
	SH Method = "SH"
)

// hardeningRatio scales the interpolated yield point in the SH rule while
// preserving the interpolated elastic slope.
const hardeningRatio = 0.6

// ParseMethod maps a configuration string onto an idealization method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case EPP, SH:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown idealization method %q (want EPP or SH)", s)
}

// Options bound the equal-area search.
type Options struct {
	Method        Method
	Tolerance     float64 // relative area mismatch accepted as converged
	MaxIterations int
}

// DefaultOptions returns the search bounds used by the analysis pipeline.
func DefaultOptions(method Method) Options {
	return Options{
		Method:        method,
		Tolerance:     1e-3,
		MaxIterations: 200,
	}
}

// Idealize reduces a measured capacity curve to its three-point idealization.
// The ultimate point is the row of maximum base shear; the yield displacement
// is found by a bounded bisection that equates the area under the idealized
// shape with the area under the measured curve.
func Idealize(c CapacityCurve, opts Options) (IdealizedCurve, error) {
	if err := c.Validate(); err != nil {
		return IdealizedCurve{}, err
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-3
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 200
	}

	idxMax := c.UltimateIndex()
	ultimate := c[idxMax]
	target := c.AreaTo(idxMax)
	if target == 0 {
		return IdealizedCurve{}, ErrZeroArea
	}

	var yieldAt func(x float64) Point
	var hi float64
	switch opts.Method {
	case EPP:
		// Plateau at the ultimate force; the search variable is the yield
		// displacement itself.
		yieldAt = func(x float64) Point {
			return Point{Displacement: x, BaseShear: ultimate.BaseShear}
		}
		hi = ultimate.Displacement
	case SH:
		// Interpolate on the measured curve, then scale force and
		// displacement by the hardening ratio so the elastic slope holds.
		yieldAt = func(x float64) Point {
			shear := c.InterpolateShear(x)
			return Point{
				Displacement: x / hardeningRatio,
				BaseShear:    shear / hardeningRatio,
			}
		}
		hi = ultimate.Displacement * hardeningRatio
	default:
		return IdealizedCurve{}, fmt.Errorf("unknown idealization method %q", opts.Method)
	}

	mismatch := func(x float64) float64 {
		return areaThreePoint(yieldAt(x), ultimate) - target
	}

	lo := hi * 1e-9
	fLo, fHi := mismatch(lo), mismatch(hi)
	if fLo == 0 {
		return assemble(yieldAt(lo), ultimate)
	}
	if fHi == 0 {
		return assemble(yieldAt(hi), ultimate)
	}
	if math.Signbit(fLo) == math.Signbit(fHi) {
		return IdealizedCurve{}, fmt.Errorf("%w: no sign change on (0, %.6g]", ErrNoConvergence, hi)
	}

	for i := 0; i < opts.MaxIterations; i++ {
		mid := (lo + hi) / 2
		fMid := mismatch(mid)
		if math.Abs(fMid)/target < opts.Tolerance {
			return assemble(yieldAt(mid), ultimate)
		}
		if math.Signbit(fMid) == math.Signbit(fLo) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return IdealizedCurve{}, fmt.Errorf("%w after %d iterations", ErrNoConvergence, opts.MaxIterations)
}

func assemble(yield, ultimate Point) (IdealizedCurve, error) {
	ic := IdealizedCurve{
		Origin:   Point{},
		Yield:    yield,
		Ultimate: ultimate,
	}
	if err := ic.Validate(); err != nil {
		return IdealizedCurve{}, fmt.Errorf("idealized curve invalid: %w", err)
	}
	return ic, nil
}
