package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "asfrava"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Seismic fragility and vulnerability assessment pipeline",
		Version: version,
		Long: `asfrava runs incremental dynamic analysis over a suite of ground-motion
records, idealizes the structure's pushover capacity curve, records the
performance point per (record, scale) step and fits fragility and
vulnerability curves from the resulting damage-state exceedance data.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "settings.yaml", "Settings file (created with defaults if missing)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the incremental dynamic analysis sweep",
		Long:  "Sweep every ground-motion record over the configured scale range and write the EDP table",
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().String("capacity", "", "Pushover capacity curve CSV (displacement;base shear)")
	analyzeCmd.Flags().String("building", "", "Building data CSV (floor;mass;mode)")
	analyzeCmd.Flags().String("records", "", "Directory of ground-motion record files")
	analyzeCmd.Flags().String("out", "", "Output directory (default from settings)")
	analyzeCmd.Flags().String("progress", "auto", "Progress output mode (auto|plain|json)")
	analyzeCmd.Flags().String("method", "", "Idealization method override (EPP|SH)")
	analyzeCmd.Flags().Bool("fast", false, "Assume collapse persists at higher scales")
	analyzeCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address during the sweep")
	_ = analyzeCmd.MarkFlagRequired("capacity")
	_ = analyzeCmd.MarkFlagRequired("building")
	_ = analyzeCmd.MarkFlagRequired("records")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit fragility and vulnerability curves from an EDP table",
		RunE:  runFit,
	}
	fitCmd.Flags().String("edp", "", "EDP table CSV produced by analyze")
	fitCmd.Flags().String("out", "", "Output directory (default from settings)")
	fitCmd.Flags().String("method", "", "Fitting method override (MSA|GLM|LogregML)")
	fitCmd.Flags().String("link", "", "GLM link override (Logit|Probit)")
	fitCmd.Flags().String("regulation", "", "LogregML regularization override")
	_ = fitCmd.MarkFlagRequired("edp")

	idealizeCmd := &cobra.Command{
		Use:   "idealize",
		Short: "Idealize a capacity curve and print the spectral transform",
		Long:  "Debug aid: idealize the pushover curve, transform it to ADRS coordinates and print the damage-state thresholds",
		RunE:  runIdealize,
	}
	idealizeCmd.Flags().String("capacity", "", "Pushover capacity curve CSV")
	idealizeCmd.Flags().String("building", "", "Building data CSV")
	idealizeCmd.Flags().String("method", "", "Idealization method override (EPP|SH)")
	_ = idealizeCmd.MarkFlagRequired("capacity")
	_ = idealizeCmd.MarkFlagRequired("building")

	rootCmd.AddCommand(analyzeCmd, fitCmd, idealizeCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
