package ida

import (
	"context"
	"fmt"
	"math"

	"github.com/asfrava/asfrava/internal/gm"
	"github.com/asfrava/asfrava/internal/spectral"
)

// ctxCheckInterval bounds how many integration steps run between
// cancellation checks.
const ctxCheckInterval = 4096

// NewmarkSimulator integrates an elastic single-degree-of-freedom oscillator
// through the scaled ground-motion history with the constant-average
// acceleration method (gamma 1/2, beta 1/4, unconditionally stable). The
// demand spectrum ordinates come out as peak relative displacement and the
// corresponding pseudo-acceleration in units of g.
type NewmarkSimulator struct{}

func (NewmarkSimulator) Simulate(ctx context.Context, osc SDOF, period float64, rec gm.Record, scale float64) (float64, float64, error) {
	if period <= 0 {
		return 0, 0, fmt.Errorf("period must be positive, got %g", period)
	}
	if rec.DT <= 0 || len(rec.Acc) < 2 {
		return 0, 0, fmt.Errorf("record %s has no usable history", rec.Name)
	}

	const (
		gamma = 0.5
		beta  = 0.25
	)
	omega := 2 * math.Pi / period
	k := omega * omega // unit mass
	c := 2 * osc.Damping * omega
	dt := rec.DT

	// Effective stiffness is constant for a linear system, factor it once.
	kEff := k + gamma/(beta*dt)*c + 1/(beta*dt*dt)
	a1 := 1/(beta*dt*dt) + gamma/(beta*dt)*c
	a2 := 1/(beta*dt) + (gamma/beta-1)*c
	a3 := (1/(2*beta)-1) + dt*(gamma/(2*beta)-1)*c

	var u, v float64
	p0 := -rec.Acc[0] * scale * spectral.Gravity
	a := p0 - c*v - k*u
	peak := 0.0

	for i := 1; i < len(rec.Acc); i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, 0, err
			}
		}
		p := -rec.Acc[i] * scale * spectral.Gravity
		pEff := p + a1*u + a2*v + a3*a

		uNext := pEff / kEff
		vNext := gamma/(beta*dt)*(uNext-u) + (1-gamma/beta)*v + dt*(1-gamma/(2*beta))*a
		aNext := (uNext-u)/(beta*dt*dt) - v/(beta*dt) - (1/(2*beta)-1)*a

		u, v, a = uNext, vNext, aNext
		if abs := math.Abs(u); abs > peak {
			peak = abs
		}
	}

	sa := omega * omega * peak / spectral.Gravity
	return peak, sa, nil
}
