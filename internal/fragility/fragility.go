// Package fragility fits probability-of-exceedance curves per damage state
// from the EDP table produced by the analysis sweep.
package fragility

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/asfrava/asfrava/internal/ida"
	"github.com/asfrava/asfrava/internal/iox"
)

var (
	// ErrInvalidMethod rejects an unrecognized fitting method name.
	ErrInvalidMethod = errors.New("invalid fragility fitting method")
	// ErrNoConvergence surfaces an optimizer that stopped without converging.
	ErrNoConvergence = errors.New("fragility fit did not converge")
)

// Method selects the fitting approach.
type Method string

const (
	// MSA groups observations by intensity level and fits a lognormal
	// fragility function by maximum likelihood.
	MSA Method = "MSA"
	// GLM fits a binomial regression on the log intensity measure.
	GLM Method = "GLM"
	// LogregML fits an L2-regularized logistic regression on the
	// standardized log intensity measure.
	LogregML Method = "LogregML"
)

// ParseMethod maps a configuration string onto a fitting method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MSA, GLM, LogregML:
		return Method(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
}

// Link selects the GLM link function.
type Link string

const (
	Logit  Link = "Logit"
	Probit Link = "Probit"
)

// Regulation selects the regularization strength policy for LogregML.
type Regulation string

const (
	NoRegulation     Regulation = "No Regulation"
	MediumRegulation Regulation = "Medium Regulation"
	HighRegulation   Regulation = "High Regulation"
)

// CValue maps a regulation level to the inverse-regularization constant.
// Unknown levels fall back to effectively unregularized.
func (r Regulation) CValue() float64 {
	switch r {
	case HighRegulation:
		return 1
	case MediumRegulation:
		return 10
	default:
		return 1e5
	}
}

// DamageStates are the three nested damage states in increasing severity.
var DamageStates = []string{"ds1", "ds2", "ds3"}

// Config parameterizes a fit.
type Config struct {
	Method     Method
	Link       Link
	Regulation Regulation

	MinScale  float64
	MaxScale  float64
	Increment float64
	// Steps is the IM sample count; zero derives it as MaxScale/0.01.
	Steps int
}

// StateFit holds the fitted parameters and sampled curve for one damage state.
type StateFit struct {
	State string

	// Lognormal parameters (MSA).
	Mu    float64
	Sigma float64

	// Regression parameters (GLM, LogregML).
	Intercept float64
	Slope     float64

	Converged bool

	// Probabilities sampled over the result's IM range.
	Probabilities []float64

	// Empirical exceedance fractions per grouped intensity level (MSA only).
	ScatterIM   []float64
	ScatterFrac []float64
}

// Result is a complete fit across all damage states.
type Result struct {
	Method  Method
	IMRange []float64
	Fits    []StateFit
}

// WriteCSV persists the probability curves as a delimited table with one IM
// column and one probability column per damage state.
func (r *Result) WriteCSV(path string, sep rune) error {
	header := []string{"IM"}
	for _, f := range r.Fits {
		header = append(header, f.State)
	}
	rows := make([][]string, len(r.IMRange))
	for i, im := range r.IMRange {
		row := []string{iox.FormatFloat(im, 6)}
		for _, f := range r.Fits {
			row = append(row, iox.FormatFloat(f.Probabilities[i], 6))
		}
		rows[i] = row
	}
	return iox.WriteTable(path, sep, header, rows)
}

// Fit dispatches to the selected method.
func Fit(table *ida.EDPTable, cfg Config) (*Result, error) {
	if len(table.Rows) == 0 {
		return nil, errors.New("edp table is empty")
	}
	imRange := cfg.imRange()
	switch cfg.Method {
	case MSA:
		return fitMSA(table, cfg, imRange)
	case GLM:
		return fitGLM(table, cfg, imRange)
	case LogregML:
		return fitLogreg(table, cfg, imRange)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, cfg.Method)
}

func (c Config) imRange() []float64 {
	steps := c.Steps
	if steps <= 0 {
		steps = int(c.MaxScale / 0.01)
	}
	if steps < 2 {
		steps = 2
	}
	dst := make([]float64, steps)
	return floats.Span(dst, c.MinScale, c.MaxScale)
}

// stateFlags extracts one damage-state indicator column from the table.
func stateFlags(table *ida.EDPTable, state string) []float64 {
	out := make([]float64, len(table.Rows))
	for i, row := range table.Rows {
		switch state {
		case "ds1":
			out[i] = float64(row.DS1)
		case "ds2":
			out[i] = float64(row.DS2)
		case "ds3":
			out[i] = float64(row.DS3)
		}
	}
	return out
}

// intensities extracts the IM column (peak ground acceleration).
func intensities(table *ida.EDPTable) []float64 {
	out := make([]float64, len(table.Rows))
	for i, row := range table.Rows {
		out[i] = row.PGA
	}
	return out
}
