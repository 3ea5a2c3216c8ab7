// Package ida drives the incremental dynamic analysis sweep: every
// ground-motion record is simulated at increasing scale factors and the
// performance point against the capacity curve is recorded per step.
package ida

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/asfrava/asfrava/internal/curve"
	"github.com/asfrava/asfrava/internal/geom"
	"github.com/asfrava/asfrava/internal/gm"
	"github.com/asfrava/asfrava/internal/spectral"
	"github.com/asfrava/asfrava/internal/telemetry"
)

// failStateFactor pushes the substituted displacement just past the DS3
// threshold so a miss always flags every damage state.
const failStateFactor = 1.01

// ProgressSink receives one tick per completed (record, scale) step.
type ProgressSink interface {
	Tick()
}

// Config bounds the sweep.
type Config struct {
	MinScale  float64
	MaxScale  float64
	Increment float64

	Method    curve.Method
	Tolerance float64
	Damping   float64
	FastMode  bool
}

// Validate rejects inconsistent scale bounds before any simulation starts.
func (c Config) Validate() error {
	if c.Increment <= 0 {
		return fmt.Errorf("scale increment must be positive, got %g", c.Increment)
	}
	if c.MinScale < 0 {
		return fmt.Errorf("minimum scale must not be negative, got %g", c.MinScale)
	}
	if c.MaxScale < c.MinScale {
		return fmt.Errorf("maximum scale %g below minimum %g", c.MaxScale, c.MinScale)
	}
	return nil
}

// ScaleSteps expands the configured range into the inclusive scale sequence,
// each value rounded to two decimals for reproducibility.
func (c Config) ScaleSteps() []float64 {
	var steps []float64
	for i := 0; ; i++ {
		s := round2(c.MinScale + float64(i)*c.Increment)
		if s > c.MaxScale+1e-9 {
			break
		}
		steps = append(steps, s)
	}
	return steps
}

// Input carries everything a sweep consumes.
type Input struct {
	Capacity curve.CapacityCurve
	Building []spectral.FloorRow
	Records  []gm.Record
	Config   Config
}

// Result is the sweep output: the EDP table plus the derived curves the
// reporting side needs.
type Result struct {
	Table     *EDPTable
	Idealized curve.IdealizedCurve
	ADRS      spectral.ADRSCurve
}

// Orchestrator runs sweeps against an external simulator.
type Orchestrator struct {
	sim     Simulator
	metrics *telemetry.Metrics
	periods []float64
}

// NewOrchestrator wires the sweep to a simulator. Metrics may be nil.
func NewOrchestrator(sim Simulator, metrics *telemetry.Metrics) *Orchestrator {
	return &Orchestrator{
		sim:     sim,
		metrics: metrics,
		periods: PeriodGrid(),
	}
}

// TotalSteps is the progress denominator: #records x #scale-steps.
func TotalSteps(in Input) int {
	return len(in.Records) * len(in.Config.ScaleSteps())
}

// Run executes the sweep sequentially, one record at a time, one scale at a
// time. A simulator failure drops only the remaining scales of that record;
// cancellation aborts the whole sweep.
func (o *Orchestrator) Run(ctx context.Context, in Input, sink ProgressSink) (*Result, error) {
	if err := in.Config.Validate(); err != nil {
		return nil, err
	}
	if len(in.Records) == 0 {
		return nil, gm.ErrNoRecords
	}
	done := o.metrics.RunStarted()
	defer done()

	ic, err := curve.Idealize(in.Capacity, curve.Options{
		Method:    in.Config.Method,
		Tolerance: in.Config.Tolerance,
	})
	if err != nil {
		return nil, err
	}
	coef, err := spectral.ModalCoefficients(in.Building)
	if err != nil {
		return nil, err
	}
	adrs := spectral.ToADRS(ic, coef)
	ds1, ds2, ds3 := adrs.Thresholds()

	capacityLine := geom.Polyline{
		{Sd: adrs.Origin.Sd, Sa: adrs.Origin.Sa},
		{Sd: adrs.Yield.Sd, Sa: adrs.Yield.Sa},
		{Sd: adrs.Ultimate.Sd, Sa: adrs.Ultimate.Sa},
	}
	failSd := ds3 * failStateFactor
	failSa := adrs.Ultimate.Sa

	osc := SDOFFromIdealized(ic, in.Config.Damping)
	scales := in.Config.ScaleSteps()

	// Parallel columns, assembled into rows only after the length check.
	var (
		sdCol     []float64
		pgaCol    []float64
		saCol     []float64
		statusCol []Status
		gmrCol    []string
	)

	for _, rec := range in.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recStart := time.Now()
		err := func() error {
			for si, scale := range scales {
				if err := ctx.Err(); err != nil {
					return err
				}

				if scale == 0 {
					sdCol = append(sdCol, 0)
					pgaCol = append(pgaCol, 0)
					saCol = append(saCol, 0)
					statusCol = append(statusCol, Intersected)
					gmrCol = append(gmrCol, rec.Name)
					tick(sink)
					o.metrics.IntersectionOutcome(string(Intersected))
					continue
				}

				spectrum, err := o.responseSpectrum(ctx, osc, rec, scale)
				if err != nil {
					return err
				}

				point, hit := geom.FindIntersection(spectrum, capacityLine)
				status := Intersected
				sd, sa := round4(point.Sd), round4(point.Sa)
				if !hit {
					status = NotIntersected
					sd, sa = round4(failSd), round4(failSa)
					log.Debug().Str("record", rec.Name).Float64("scale", scale).
						Msg("no intersection")
				} else {
					log.Debug().Str("record", rec.Name).Float64("scale", scale).
						Float64("sd", sd).Float64("sa", sa).Msg("intersection found")
				}

				sdCol = append(sdCol, sd)
				pgaCol = append(pgaCol, round4(rec.PGA(scale)))
				saCol = append(saCol, sa)
				statusCol = append(statusCol, status)
				gmrCol = append(gmrCol, rec.Name)
				tick(sink)
				o.metrics.IntersectionOutcome(string(status))

				log.Info().Str("record", rec.Name).Float64("scale", scale).
					Str("state", string(status)).Msg("sweep step")

				if in.Config.FastMode && status == NotIntersected {
					// Collapse at this scale implies collapse at every
					// higher scale for the same record.
					skipped := scales[si+1:]
					for _, sc := range skipped {
						sdCol = append(sdCol, round4(failSd))
						pgaCol = append(pgaCol, round4(sc))
						saCol = append(saCol, round4(failSa))
						statusCol = append(statusCol, NotIntersected)
						gmrCol = append(gmrCol, rec.Name)
						tick(sink)
						o.metrics.IntersectionOutcome(string(NotIntersected))
					}
					log.Info().Str("record", rec.Name).Float64("first_miss", scale).
						Int("skipped", len(skipped)).Msg("fast-mode: higher scales bulk-filled")
					return nil
				}
			}
			return nil
		}()
		o.metrics.ObserveRecord(time.Since(recStart))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// One bad record must not abort the batch.
			o.metrics.RecordFailed()
			log.Error().Err(err).Str("record", rec.Name).Msg("record analysis failed; continuing")
			continue
		}
	}

	n := len(sdCol)
	if len(pgaCol) != n || len(saCol) != n || len(statusCol) != n || len(gmrCol) != n {
		return nil, ErrColumnMismatch
	}

	table := &EDPTable{
		Rows:         make([]EDPRow, n),
		DS1Threshold: ds1,
		DS2Threshold: ds2,
		DS3Threshold: ds3,
	}
	for i := 0; i < n; i++ {
		table.Rows[i] = EDPRow{
			Sd:     sdCol[i],
			PGA:    pgaCol[i],
			SA:     saCol[i],
			Status: statusCol[i],
			GMR:    gmrCol[i],
			DS1:    flag(sdCol[i] >= ds1),
			DS2:    flag(sdCol[i] >= ds2),
			DS3:    flag(sdCol[i] >= ds3),
		}
	}

	return &Result{Table: table, Idealized: ic, ADRS: adrs}, nil
}

// responseSpectrum sweeps the period grid for one (record, scale) pair.
func (o *Orchestrator) responseSpectrum(ctx context.Context, osc SDOF, rec gm.Record, scale float64) (geom.Polyline, error) {
	spectrum := make(geom.Polyline, 0, len(o.periods))
	for _, period := range o.periods {
		disp, acc, err := o.sim.Simulate(ctx, osc, period, rec, scale)
		if err != nil {
			return nil, fmt.Errorf("simulate period %.4g: %w", period, err)
		}
		o.metrics.SimulationDone()
		spectrum = append(spectrum, geom.Point{Sd: disp, Sa: acc})
	}
	return spectrum, nil
}

func tick(sink ProgressSink) {
	if sink != nil {
		sink.Tick()
	}
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
