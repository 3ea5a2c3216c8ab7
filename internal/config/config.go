// Package config loads and persists the analysis settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/asfrava/asfrava/internal/curve"
	"github.com/asfrava/asfrava/internal/fragility"
	"github.com/asfrava/asfrava/internal/ida"
)

// Settings represents the persisted analysis configuration.
type Settings struct {
	Delimiter string `yaml:"delimiter"` // CSV column separator

	MinScale  float64 `yaml:"min_scale"` // lowest record scale factor
	MaxScale  float64 `yaml:"max_scale"` // highest record scale factor
	Increment float64 `yaml:"increment"` // scale step

	IdealizationMethod string  `yaml:"idealization_method"` // EPP or SH
	Damping            float64 `yaml:"damping"`             // viscous damping ratio
	FastMode           bool    `yaml:"fast_mode"`           // stop sweeping a record after first collapse

	FragilityMethod string `yaml:"fragility_method"` // MSA, GLM or LogregML
	Link            string `yaml:"link"`             // GLM link function
	Regulation      string `yaml:"regulation"`       // LogregML regularization level

	LossRatios []float64 `yaml:"loss_ratios"` // per damage state, non-decreasing

	OutputDir string `yaml:"output_dir"`
}

// Default returns the settings used when no file exists yet.
func Default() *Settings {
	return &Settings{
		Delimiter:          ";",
		MinScale:           0.05,
		MaxScale:           2.0,
		Increment:          0.05,
		IdealizationMethod: "EPP",
		Damping:            ida.DefaultDamping,
		FastMode:           false,
		FragilityMethod:    "MSA",
		Link:               "Logit",
		Regulation:         "No Regulation",
		LossRatios:         []float64{0.33, 0.66, 1.0},
		OutputDir:          "out",
	}
}

// Load reads settings from path. A missing file yields the defaults and
// writes them out. An unparseable file is moved aside to <path>.bak and
// replaced with the defaults so a bad edit never blocks a run.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s := Default()
		if err := Save(s, path); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		if bakErr := os.Rename(path, path+".bak"); bakErr != nil {
			return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
		}
		s := Default()
		if saveErr := Save(s, path); saveErr != nil {
			return nil, saveErr
		}
		return s, nil
	}
	return &s, nil
}

// Save persists settings to path, creating parent directories as needed.
func Save(s *Settings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Validate checks the settings for internal consistency.
func (s *Settings) Validate() error {
	if len(s.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", s.Delimiter)
	}
	if s.MinScale < 0 || s.MaxScale < s.MinScale || s.Increment <= 0 {
		return fmt.Errorf("invalid scale range [%g, %g] step %g", s.MinScale, s.MaxScale, s.Increment)
	}
	if s.Damping <= 0 || s.Damping >= 1 {
		return fmt.Errorf("damping ratio %g outside (0, 1)", s.Damping)
	}
	if _, err := curve.ParseMethod(s.IdealizationMethod); err != nil {
		return err
	}
	if _, err := fragility.ParseMethod(s.FragilityMethod); err != nil {
		return err
	}
	if len(s.LossRatios) != 3 {
		return fmt.Errorf("want three loss ratios, got %d", len(s.LossRatios))
	}
	for i := 1; i < len(s.LossRatios); i++ {
		if s.LossRatios[i] < s.LossRatios[i-1] {
			return fmt.Errorf("loss ratios must be non-decreasing")
		}
	}
	return nil
}

// Sep returns the delimiter as a rune for the CSV layer.
func (s *Settings) Sep() rune {
	return rune(s.Delimiter[0])
}

// AnalysisConfig maps the settings onto the sweep configuration.
func (s *Settings) AnalysisConfig() (ida.Config, error) {
	method, err := curve.ParseMethod(s.IdealizationMethod)
	if err != nil {
		return ida.Config{}, err
	}
	return ida.Config{
		MinScale:  s.MinScale,
		MaxScale:  s.MaxScale,
		Increment: s.Increment,
		Method:    method,
		Damping:   s.Damping,
		FastMode:  s.FastMode,
	}, nil
}

// FragilityConfig maps the settings onto the fitting configuration.
func (s *Settings) FragilityConfig() (fragility.Config, error) {
	method, err := fragility.ParseMethod(s.FragilityMethod)
	if err != nil {
		return fragility.Config{}, err
	}
	return fragility.Config{
		Method:     method,
		Link:       fragility.Link(s.Link),
		Regulation: fragility.Regulation(s.Regulation),
		MinScale:   s.MinScale,
		MaxScale:   s.MaxScale,
		Increment:  s.Increment,
	}, nil
}
