package ida

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asfrava/asfrava/internal/gm"
	"github.com/asfrava/asfrava/internal/spectral"
)

func testOscillator() SDOF {
	return SDOF{
		YieldDisp:     0.05,
		YieldForce:    500,
		UltimateDisp:  0.10,
		UltimateForce: 520,
		Damping:       DefaultDamping,
	}
}

// rampRecord rises linearly to a unit peak over one second.
func rampRecord(dt float64) gm.Record {
	n := int(1.0/dt) + 1
	acc := make([]float64, n)
	for i := range acc {
		acc[i] = float64(i) / float64(n-1)
	}
	return gm.Record{Name: "ramp", DT: dt, Acc: acc}
}

func TestNewmarkQuasiStaticLimit(t *testing.T) {
	// A very stiff oscillator tracks the ground quasi-statically, so its
	// pseudo-acceleration approaches the peak ground acceleration.
	sim := NewmarkSimulator{}
	rec := rampRecord(0.005)
	const scale = 0.4

	disp, sa, err := sim.Simulate(context.Background(), testOscillator(), 0.05, rec, scale)
	require.NoError(t, err)
	assert.InDelta(t, scale, sa, 0.02)
	assert.Greater(t, disp, 0.0)
}

func TestNewmarkPseudoAccelerationIdentity(t *testing.T) {
	sim := NewmarkSimulator{}
	rec := rampRecord(0.005)
	const period = 0.8

	disp, sa, err := sim.Simulate(context.Background(), testOscillator(), period, rec, 1.0)
	require.NoError(t, err)

	omega := 2 * math.Pi / period
	assert.InDelta(t, omega*omega*disp/spectral.Gravity, sa, 1e-12)
}

func TestNewmarkScalesLinearly(t *testing.T) {
	// Linear system: doubling the scale doubles the peak response.
	sim := NewmarkSimulator{}
	rec := rampRecord(0.005)

	d1, _, err := sim.Simulate(context.Background(), testOscillator(), 0.5, rec, 0.5)
	require.NoError(t, err)
	d2, _, err := sim.Simulate(context.Background(), testOscillator(), 0.5, rec, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 2*d1, d2, 1e-9)
}

func TestNewmarkZeroInput(t *testing.T) {
	sim := NewmarkSimulator{}
	rec := gm.Record{Name: "quiet", DT: 0.01, Acc: make([]float64, 200)}

	disp, sa, err := sim.Simulate(context.Background(), testOscillator(), 1.0, rec, 1.0)
	require.NoError(t, err)
	assert.Zero(t, disp)
	assert.Zero(t, sa)
}

func TestNewmarkInputValidation(t *testing.T) {
	sim := NewmarkSimulator{}
	rec := rampRecord(0.01)

	_, _, err := sim.Simulate(context.Background(), testOscillator(), 0, rec, 1)
	assert.Error(t, err)

	_, _, err = sim.Simulate(context.Background(), testOscillator(), 1, gm.Record{Name: "bad", DT: 0, Acc: []float64{0, 1}}, 1)
	assert.Error(t, err)
}

func TestNewmarkCancellation(t *testing.T) {
	sim := NewmarkSimulator{}
	acc := make([]float64, ctxCheckInterval*3)
	for i := range acc {
		acc[i] = math.Sin(float64(i) / 10)
	}
	rec := gm.Record{Name: "long", DT: 0.001, Acc: acc}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := sim.Simulate(ctx, testOscillator(), 1.0, rec, 1.0)
	assert.ErrorIs(t, err, context.Canceled)
}
