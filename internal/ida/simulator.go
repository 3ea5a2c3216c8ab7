package ida

import (
	"context"

	"github.com/asfrava/asfrava/internal/curve"
	"github.com/asfrava/asfrava/internal/gm"
)

// SDOF describes the equivalent single-degree-of-freedom oscillator derived
// from the idealized capacity curve.
type SDOF struct {
	YieldDisp     float64
	YieldForce    float64
	UltimateDisp  float64
	UltimateForce float64
	Damping       float64
}

// DefaultDamping is the viscous damping ratio applied when none is configured.
const DefaultDamping = 0.05

// SDOFFromIdealized derives oscillator parameters from an idealized curve.
func SDOFFromIdealized(ic curve.IdealizedCurve, damping float64) SDOF {
	if damping <= 0 {
		damping = DefaultDamping
	}
	return SDOF{
		YieldDisp:     ic.Yield.Displacement,
		YieldForce:    ic.Yield.BaseShear,
		UltimateDisp:  ic.Ultimate.Displacement,
		UltimateForce: ic.Ultimate.BaseShear,
		Damping:       damping,
	}
}

// ElasticStiffness is the initial stiffness Fy/Dy.
func (s SDOF) ElasticStiffness() float64 {
	return s.YieldForce / s.YieldDisp
}

// HardeningStiffness is the post-yield stiffness (Fu-Fy)/(Du-Dy).
func (s SDOF) HardeningStiffness() float64 {
	return (s.UltimateForce - s.YieldForce) / (s.UltimateDisp - s.YieldDisp)
}

// Simulator is the external structural response solver. For one oscillator,
// natural period and scaled ground motion it returns the peak displacement
// and peak pseudo-acceleration. The pipeline treats it as a black box.
type Simulator interface {
	Simulate(ctx context.Context, osc SDOF, period float64, rec gm.Record, scale float64) (peakDisp, peakAcc float64, err error)
}

// PeriodGrid returns the natural-period sweep used to build each response
// spectrum: a near-zero seed period followed by 0.02 s steps up to 4 s.
func PeriodGrid() []float64 {
	const (
		seed = 1e-6
		step = 0.02
		max  = 4.0
	)
	grid := []float64{seed}
	for t := step; t <= max+step/2; t += step {
		grid = append(grid, t)
	}
	return grid
}
