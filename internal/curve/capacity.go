package curve

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCurve   = errors.New("capacity curve is empty")
	ErrNonMonotonic = errors.New("capacity curve displacement is not strictly increasing")
	ErrZeroArea     = errors.New("area under capacity curve is zero")
)

// Point is one sample of a pushover curve: roof displacement against base shear.
type Point struct {
	Displacement float64
	BaseShear    float64
}

// CapacityCurve is a measured pushover curve ordered by increasing displacement.
type CapacityCurve []Point

// Validate checks that the curve is non-empty and strictly ordered by displacement.
func (c CapacityCurve) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCurve
	}
	for i := 1; i < len(c); i++ {
		if c[i].Displacement <= c[i-1].Displacement {
			return fmt.Errorf("%w: row %d (%.6g after %.6g)",
				ErrNonMonotonic, i, c[i].Displacement, c[i-1].Displacement)
		}
	}
	return nil
}

// UltimateIndex returns the index of the row with maximum base shear.
func (c CapacityCurve) UltimateIndex() int {
	best := 0
	for i, p := range c {
		if p.BaseShear > c[best].BaseShear {
			best = i
		}
	}
	return best
}

// AreaTo integrates the curve from the origin up to row idx using a
// triangle-plus-rectangle decomposition per segment.
func (c CapacityCurve) AreaTo(idx int) float64 {
	var area float64
	for i := 1; i <= idx && i < len(c); i++ {
		dx := c[i].Displacement - c[i-1].Displacement
		dy := c[i].BaseShear - c[i-1].BaseShear
		area += dx*dy/2 + dx*c[i-1].BaseShear
	}
	return area
}

// InterpolateShear returns the base shear at displacement x by linear
// interpolation between the bracketing rows. Displacements beyond the last
// row extrapolate from the final segment.
func (c CapacityCurve) InterpolateShear(x float64) float64 {
	n := len(c)
	if n == 1 {
		return c[0].BaseShear
	}
	lo := n - 2
	for i, p := range c {
		if p.Displacement == x {
			return p.BaseShear
		}
		if p.Displacement > x {
			lo = i - 1
			if lo < 0 {
				lo = 0
			}
			break
		}
	}
	a, b := c[lo], c[lo+1]
	return a.BaseShear + (x-a.Displacement)*(b.BaseShear-a.BaseShear)/(b.Displacement-a.Displacement)
}

// IdealizedCurve is the three-point reduction of a capacity curve: the origin,
// the yield point and the ultimate point, in displacement order.
type IdealizedCurve struct {
	Origin   Point
	Yield    Point
	Ultimate Point
}

// Validate enforces the shape invariants of a three-point idealization.
func (ic IdealizedCurve) Validate() error {
	if ic.Yield.Displacement <= 0 || ic.Yield.Displacement >= ic.Ultimate.Displacement {
		return fmt.Errorf("yield displacement %.6g outside (0, %.6g)",
			ic.Yield.Displacement, ic.Ultimate.Displacement)
	}
	if ic.Yield.BaseShear > ic.Ultimate.BaseShear {
		return fmt.Errorf("yield force %.6g exceeds ultimate force %.6g",
			ic.Yield.BaseShear, ic.Ultimate.BaseShear)
	}
	return nil
}

// Area returns the area under the two-segment idealized shape.
func (ic IdealizedCurve) Area() float64 {
	return areaThreePoint(ic.Yield, ic.Ultimate)
}

// areaThreePoint integrates origin -> yield -> ultimate: the elastic triangle,
// the rectangle under the yield plateau and the hardening triangle on top.
func areaThreePoint(yield, ultimate Point) float64 {
	a1 := yield.Displacement * yield.BaseShear / 2
	a2 := yield.BaseShear * (ultimate.Displacement - yield.Displacement)
	a3 := (ultimate.BaseShear - yield.BaseShear) * (ultimate.Displacement - yield.Displacement) / 2
	return a1 + a2 + a3
}
