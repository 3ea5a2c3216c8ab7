package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SimulationDone()
		m.IntersectionOutcome("intersected")
		m.RecordFailed()
		m.RunStarted()()
		m.ObserveRecord(time.Second)
	})
}

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.SimulationDone()
	m.SimulationDone()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Simulations))

	m.IntersectionOutcome("intersected")
	m.IntersectionOutcome("not intersected")
	m.IntersectionOutcome("intersected")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Intersections.WithLabelValues("intersected")))

	done := m.RunStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveRuns))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveRuns))
}
