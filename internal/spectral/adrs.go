// Package spectral converts idealized capacity curves and building modal data
// into acceleration-displacement response spectrum (ADRS) coordinates.
package spectral

import (
	"errors"

	"github.com/asfrava/asfrava/internal/curve"
)

// Gravity is the standard gravitational acceleration used to turn seismic
// mass into weight (m/s^2).
const Gravity = 9.80665

var (
	ErrEmptyBuildingData     = errors.New("building modal data is empty")
	ErrZeroReferenceOrdinate = errors.New("reference mode ordinate is zero")
)

// FloorRow is one floor of the building: seismic mass and first-mode ordinate.
type FloorRow struct {
	Floor string
	Mass  float64
	Mode  float64
}

// Coefficients are the modal participation scalars dividing displacement and
// force into spectral coordinates.
type Coefficients struct {
	Sd float64
	Sa float64
}

// ModalCoefficients derives the participation coefficients from per-floor
// mass and mode-shape data. Ordinates are normalized by the first floor's
// ordinate; weight is mass times gravity.
func ModalCoefficients(rows []FloorRow) (Coefficients, error) {
	if len(rows) == 0 {
		return Coefficients{}, ErrEmptyBuildingData
	}
	ref := rows[0].Mode
	if ref == 0 {
		return Coefficients{}, ErrZeroReferenceOrdinate
	}

	var m1, m2 float64
	for _, r := range rows {
		phi := r.Mode / ref
		w := r.Mass * Gravity
		m1 += w * phi
		m2 += w * phi * phi
	}
	return Coefficients{
		Sd: m1 / m2,
		Sa: m1 * m1 / m2,
	}, nil
}

// ADRSCurve is the idealized capacity curve expressed in spectral coordinates,
// with the three damage-state displacement thresholds derived from it.
type ADRSCurve struct {
	Origin   ADRSPoint
	Yield    ADRSPoint
	Ultimate ADRSPoint

	DS1 float64
	DS2 float64
	DS3 float64
}

// ADRSPoint is a spectral displacement / spectral acceleration pair.
type ADRSPoint struct {
	Sd float64
	Sa float64
}

// ToADRS divides the idealized curve elementwise by the modal coefficients
// and attaches the damage-state thresholds: DS1 at 75% of the spectral yield
// displacement, DS3 at the spectral ultimate displacement, DS2 midway.
func ToADRS(ic curve.IdealizedCurve, coef Coefficients) ADRSCurve {
	conv := func(p curve.Point) ADRSPoint {
		return ADRSPoint{
			Sd: p.Displacement / coef.Sd,
			Sa: p.BaseShear / coef.Sa,
		}
	}
	a := ADRSCurve{
		Origin:   conv(ic.Origin),
		Yield:    conv(ic.Yield),
		Ultimate: conv(ic.Ultimate),
	}
	a.DS1 = 0.75 * a.Yield.Sd
	a.DS3 = a.Ultimate.Sd
	a.DS2 = (a.DS1 + a.DS3) / 2
	return a
}

// Thresholds returns the three damage-state displacement thresholds in
// increasing severity.
func (a ADRSCurve) Thresholds() (ds1, ds2, ds3 float64) {
	return a.DS1, a.DS2, a.DS3
}

// Points returns the curve as an ordered polyline.
func (a ADRSCurve) Points() []ADRSPoint {
	return []ADRSPoint{a.Origin, a.Yield, a.Ultimate}
}
