package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asfrava/asfrava/internal/config"
	"github.com/asfrava/asfrava/internal/curve"
	"github.com/asfrava/asfrava/internal/spectral"
)

func runIdealize(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	capacityPath, _ := cmd.Flags().GetString("capacity")
	buildingPath, _ := cmd.Flags().GetString("building")
	methodOverride, _ := cmd.Flags().GetString("method")

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if methodOverride != "" {
		settings.IdealizationMethod = methodOverride
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	method, err := curve.ParseMethod(settings.IdealizationMethod)
	if err != nil {
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

	opts := curve.DefaultOptions(method)
	ic, err := curve.Idealize(capacity, opts)
	if err != nil {
		return err
	}
	coef, err := spectral.ModalCoefficients(building)
	if err != nil {
		return err
	}
	adrs := spectral.ToADRS(ic, coef)
	ds1, ds2, ds3 := adrs.Thresholds()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "idealization method: %s\n\n", method)
	fmt.Fprintf(out, "idealized curve (displacement, base shear):\n")
	fmt.Fprintf(out, "  yield:    %.6g  %.6g\n", ic.Yield.Displacement, ic.Yield.BaseShear)
	fmt.Fprintf(out, "  ultimate: %.6g  %.6g\n\n", ic.Ultimate.Displacement, ic.Ultimate.BaseShear)
	fmt.Fprintf(out, "modal coefficients: Sd %.6g  Sa %.6g\n\n", coef.Sd, coef.Sa)
	fmt.Fprintf(out, "ADRS capacity (Sd, Sa):\n")
	fmt.Fprintf(out, "  yield:    %.6g  %.6g\n", adrs.Yield.Sd, adrs.Yield.Sa)
	fmt.Fprintf(out, "  ultimate: %.6g  %.6g\n\n", adrs.Ultimate.Sd, adrs.Ultimate.Sa)
	fmt.Fprintf(out, "damage-state thresholds (Sd): ds1 %.6g  ds2 %.6g  ds3 %.6g\n", ds1, ds2, ds3)
	return nil
}
