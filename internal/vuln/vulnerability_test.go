package vuln

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asfrava/asfrava/internal/fragility"
	"github.com/asfrava/asfrava/internal/iox"
)

func fitFixture() *fragility.Result {
	return &fragility.Result{
		Method:  fragility.MSA,
		IMRange: []float64{0.2, 0.5, 1.0},
		Fits: []fragility.StateFit{
			{State: "ds1", Probabilities: []float64{0.9, 1.0, 1.0}},
			{State: "ds2", Probabilities: []float64{0.4, 0.8, 1.0}},
			{State: "ds3", Probabilities: []float64{0.1, 0.5, 1.0}},
		},
	}
}

func TestCombine(t *testing.T) {
	curve, err := Combine(fitFixture(), []float64{0.3, 0.6, 1.0})
	require.NoError(t, err)
	require.Len(t, curve.LossRatio, 3)

	// (p1-p2)*0.3 + (p2-p3)*0.6 + p3*1.0 per sample.
	assert.InDelta(t, 0.5*0.3+0.3*0.6+0.1, curve.LossRatio[0], 1e-12)
	assert.InDelta(t, 0.2*0.3+0.3*0.6+0.5, curve.LossRatio[1], 1e-12)
	assert.InDelta(t, 1.0, curve.LossRatio[2], 1e-12)
}

func TestCombineEqualRatiosCollapse(t *testing.T) {
	// Identical ratios reduce the expectation to ratio * P(ds1).
	curve, err := Combine(fitFixture(), []float64{0.5, 0.5, 0.5})
	require.NoError(t, err)
	for i, p1 := range fitFixture().Fits[0].Probabilities {
		assert.InDelta(t, 0.5*p1, curve.LossRatio[i], 1e-12)
	}
}

func TestCombineValidation(t *testing.T) {
	_, err := Combine(fitFixture(), []float64{0.3, 0.6})
	assert.ErrorIs(t, err, ErrLossRatioCount)

	_, err = Combine(fitFixture(), []float64{0.6, 0.3, 1.0})
	assert.ErrorIs(t, err, ErrLossRatioOrder)

	res := fitFixture()
	res.Fits = res.Fits[:2]
	_, err = Combine(res, []float64{0.3, 0.6, 1.0})
	assert.Error(t, err)

	res = fitFixture()
	res.Fits[1].Probabilities = res.Fits[1].Probabilities[:2]
	_, err = Combine(res, []float64{0.3, 0.6, 1.0})
	assert.Error(t, err)
}

func TestCurveWriteCSV(t *testing.T) {
	curve, err := Combine(fitFixture(), []float64{0.3, 0.6, 1.0})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "vulnerability.csv")
	require.NoError(t, curve.WriteCSV(path, ';'))

	tab, err := iox.ReadTable(path, ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"Loss ratio", "IM"}, tab.Header)
	require.Len(t, tab.Rows, 3)
	assert.InDelta(t, curve.LossRatio[0], tab.Rows[0][0], 1e-6)
	assert.InDelta(t, 0.2, tab.Rows[0][1], 1e-12)
}
