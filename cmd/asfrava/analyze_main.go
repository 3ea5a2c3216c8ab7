package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/asfrava/asfrava/internal/config"
	"github.com/asfrava/asfrava/internal/curve"
	"github.com/asfrava/asfrava/internal/gm"
	"github.com/asfrava/asfrava/internal/ida"
	"github.com/asfrava/asfrava/internal/iox"
	"github.com/asfrava/asfrava/internal/progress"
	"github.com/asfrava/asfrava/internal/spectral"
	"github.com/asfrava/asfrava/internal/telemetry"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	capacityPath, _ := cmd.Flags().GetString("capacity")
	buildingPath, _ := cmd.Flags().GetString("building")
	recordsDir, _ := cmd.Flags().GetString("records")
	outDir, _ := cmd.Flags().GetString("out")
	progressMode, _ := cmd.Flags().GetString("progress")
	methodOverride, _ := cmd.Flags().GetString("method")
	fast, _ := cmd.Flags().GetBool("fast")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if methodOverride != "" {
		settings.IdealizationMethod = methodOverride
	}
	if fast {
		settings.FastMode = true
	}
	if outDir == "" {
		outDir = settings.OutputDir
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	capacity, err := loadCapacity(capacityPath, settings.Sep())
	if err != nil {
		return err
	}
	building, err := loadBuilding(buildingPath, settings.Sep())
	if err != nil {
		return err
	}
	records, err := gm.LoadAll(recordsDir, settings.Sep())
	if err != nil {
		return err
	}

	sweepCfg, err := settings.AnalysisConfig()
	if err != nil {
		return err
	}
	in := ida.Input{
		Capacity: capacity,
		Building: building,
		Records:  records,
		Config:   sweepCfg,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *telemetry.Metrics
	if metricsAddr != "" {
		metrics = telemetry.NewMetrics()
		go metrics.Serve(ctx, metricsAddr)
	}

	printer, err := progress.NewPrinter(progressMode, os.Stderr)
	if err != nil {
		return err
	}
	tracker := progress.NewTracker(ida.TotalSteps(in))

	runID := uuid.New().String()
	start := time.Now()
	log.Info().Str("run_id", runID).Int("records", len(records)).
		Int("steps", ida.TotalSteps(in)).Str("method", settings.IdealizationMethod).
		Bool("fast_mode", settings.FastMode).Msg("starting analysis sweep")

	// The sweep runs on a worker; ticks flow over the tracker's channel and
	// the terminal is only ever written from this goroutine.
	type sweepOut struct {
		res *ida.Result
		err error
	}
	outCh := make(chan sweepOut, 1)
	go func() {
		orch := ida.NewOrchestrator(ida.NewmarkSimulator{}, metrics)
		res, err := orch.Run(ctx, in, tracker)
		tracker.Close()
		outCh <- sweepOut{res: res, err: err}
	}()
	tracker.Drain(printer)

	out := <-outCh
	if out.err != nil {
		return out.err
	}
	res := out.res

	outPath := filepath.Join(outDir, "EDPs_data_"+filepath.Base(capacityPath))
	if err := res.Table.WriteCSV(outPath, settings.Sep()); err != nil {
		return err
	}

	log.Info().Str("run_id", runID).Str("output", outPath).
		Int("rows", len(res.Table.Rows)).
		Dur("elapsed", time.Since(start)).Msg("analysis sweep complete")
	return nil
}

// loadCapacity reads the pushover curve from the first two table columns.
func loadCapacity(path string, sep rune) (curve.CapacityCurve, error) {
	table, err := iox.ReadTable(path, sep)
	if err != nil {
		return nil, fmt.Errorf("capacity curve: %w", err)
	}
	c := make(curve.CapacityCurve, len(table.Rows))
	for i, row := range table.Rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("capacity curve row %d: want 2 columns, got %d", i+1, len(row))
		}
		c[i] = curve.Point{Displacement: row[0], BaseShear: row[1]}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("capacity curve: %w", err)
	}
	return c, nil
}

// loadBuilding reads the floor table (floor number, mass, mode ordinate).
func loadBuilding(path string, sep rune) ([]spectral.FloorRow, error) {
	table, err := iox.ReadTable(path, sep)
	if err != nil {
		return nil, fmt.Errorf("building data: %w", err)
	}
	rows := make([]spectral.FloorRow, len(table.Rows))
	for i, row := range table.Rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("building data row %d: want 3 columns, got %d", i+1, len(row))
		}
		rows[i] = spectral.FloorRow{Floor: iox.FormatFloat(row[0], 0), Mass: row[1], Mode: row[2]}
	}
	return rows, nil
}
