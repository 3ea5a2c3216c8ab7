package main

import (
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/asfrava/asfrava/internal/config"
	"github.com/asfrava/asfrava/internal/fragility"
	"github.com/asfrava/asfrava/internal/ida"
	"github.com/asfrava/asfrava/internal/vuln"
)

func runFit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	edpPath, _ := cmd.Flags().GetString("edp")
	outDir, _ := cmd.Flags().GetString("out")
	methodOverride, _ := cmd.Flags().GetString("method")
	linkOverride, _ := cmd.Flags().GetString("link")
	regulationOverride, _ := cmd.Flags().GetString("regulation")

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if methodOverride != "" {
		settings.FragilityMethod = methodOverride
	}
	if linkOverride != "" {
		settings.Link = linkOverride
	}
	if regulationOverride != "" {
		settings.Regulation = regulationOverride
	}
	if outDir == "" {
		outDir = settings.OutputDir
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	table, err := ida.ReadCSV(edpPath, settings.Sep())
	if err != nil {
		return err
	}

	fitCfg, err := settings.FragilityConfig()
	if err != nil {
		return err
	}
	res, err := fragility.Fit(table, fitCfg)
	if err != nil {
		return err
	}
	for _, f := range res.Fits {
		ev := log.Info().Str("state", f.State).Bool("converged", f.Converged)
		switch res.Method {
		case fragility.MSA:
			ev = ev.Float64("mu", f.Mu).Float64("sigma", f.Sigma)
		default:
			ev = ev.Float64("intercept", f.Intercept).Float64("slope", f.Slope)
		}
		ev.Msg("damage state fitted")
	}

	fragPath := filepath.Join(outDir, "fragility.csv")
	if err := res.WriteCSV(fragPath, settings.Sep()); err != nil {
		return err
	}

	curve, err := vuln.Combine(res, settings.LossRatios)
	if err != nil {
		return err
	}
	vulnPath := filepath.Join(outDir, "vulnerability.csv")
	if err := curve.WriteCSV(vulnPath, settings.Sep()); err != nil {
		return err
	}

	log.Info().Str("method", string(res.Method)).
		Str("fragility", fragPath).Str("vulnerability", vulnPath).
		Int("samples", len(res.IMRange)).Msg("curves written")
	return nil
}
