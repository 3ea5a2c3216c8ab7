// Package vuln folds fragility probabilities into an expected-loss-ratio
// curve over the intensity-measure range.
package vuln

import (
	"errors"
	"fmt"

	"github.com/asfrava/asfrava/internal/fragility"
	"github.com/asfrava/asfrava/internal/iox"
)

var (
	ErrLossRatioCount = errors.New("want exactly three loss ratios")
	ErrLossRatioOrder = errors.New("loss ratios must be non-decreasing")
)

// Curve is the expected loss ratio sampled over the intensity range.
type Curve struct {
	IM        []float64
	LossRatio []float64
}

// Combine weights the probability mass exclusively attributable to each
// damage-state band by that state's loss ratio: the band between two
// consecutive exceedance curves carries the lower state's ratio, and the
// highest state's full exceedance probability carries its own.
func Combine(res *fragility.Result, lossRatios []float64) (*Curve, error) {
	if len(lossRatios) != 3 {
		return nil, fmt.Errorf("%w, got %d", ErrLossRatioCount, len(lossRatios))
	}
	if lossRatios[0] > lossRatios[1] || lossRatios[1] > lossRatios[2] {
		return nil, ErrLossRatioOrder
	}
	if len(res.Fits) != 3 {
		return nil, fmt.Errorf("want three damage-state fits, got %d", len(res.Fits))
	}
	p1 := res.Fits[0].Probabilities
	p2 := res.Fits[1].Probabilities
	p3 := res.Fits[2].Probabilities
	if len(p1) != len(res.IMRange) || len(p2) != len(p1) || len(p3) != len(p1) {
		return nil, errors.New("probability curves have mismatched lengths")
	}

	lr := make([]float64, len(p1))
	for i := range p1 {
		lr[i] = (p1[i]-p2[i])*lossRatios[0] +
			(p2[i]-p3[i])*lossRatios[1] +
			p3[i]*lossRatios[2]
	}
	return &Curve{IM: res.IMRange, LossRatio: lr}, nil
}

// WriteCSV persists the curve as a delimited (loss ratio, IM) table.
func (c *Curve) WriteCSV(path string, sep rune) error {
	rows := make([][]string, len(c.IM))
	for i := range c.IM {
		rows[i] = []string{
			iox.FormatFloat(c.LossRatio[i], 6),
			iox.FormatFloat(c.IM[i], 6),
		}
	}
	return iox.WriteTable(path, sep, []string{"Loss ratio", "IM"}, rows)
}
