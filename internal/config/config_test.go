package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asfrava/asfrava/internal/curve"
	"github.com/asfrava/asfrava/internal/fragility"
)

func TestLoadMissingWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	// The defaults were persisted.
	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	want := Default()
	want.MaxScale = 3.5
	want.FragilityMethod = "GLM"
	want.Link = "Probit"
	want.FastMode = true
	require.NoError(t, Save(want, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadCorruptMovesAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("delimiter: [unterminated"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	// The bad file was preserved next to the regenerated one.
	bak, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Contains(t, string(bak), "unterminated")
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	// A sweep may start at scale zero; only negative minimums are invalid.
	zero := Default()
	zero.MinScale = 0
	require.NoError(t, zero.Validate())

	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"multi-char delimiter", func(s *Settings) { s.Delimiter = ";;" }},
		{"negative min scale", func(s *Settings) { s.MinScale = -0.1 }},
		{"inverted scales", func(s *Settings) { s.MinScale, s.MaxScale = 2, 1 }},
		{"zero increment", func(s *Settings) { s.Increment = 0 }},
		{"damping out of range", func(s *Settings) { s.Damping = 1.5 }},
		{"bad idealization", func(s *Settings) { s.IdealizationMethod = "bilinear" }},
		{"bad fragility method", func(s *Settings) { s.FragilityMethod = "OLS" }},
		{"two loss ratios", func(s *Settings) { s.LossRatios = []float64{0.3, 0.6} }},
		{"decreasing loss ratios", func(s *Settings) { s.LossRatios = []float64{0.9, 0.6, 1.0} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestAnalysisConfig(t *testing.T) {
	s := Default()
	s.IdealizationMethod = "SH"
	s.FastMode = true

	cfg, err := s.AnalysisConfig()
	require.NoError(t, err)
	assert.Equal(t, curve.SH, cfg.Method)
	assert.True(t, cfg.FastMode)
	assert.Equal(t, s.MaxScale, cfg.MaxScale)
	require.NoError(t, cfg.Validate())
}

func TestFragilityConfig(t *testing.T) {
	s := Default()
	s.FragilityMethod = "LogregML"
	s.Regulation = "High Regulation"

	cfg, err := s.FragilityConfig()
	require.NoError(t, err)
	assert.Equal(t, fragility.LogregML, cfg.Method)
	assert.Equal(t, 1.0, cfg.Regulation.CValue())

	s.FragilityMethod = "P58"
	_, err = s.FragilityConfig()
	assert.ErrorIs(t, err, fragility.ErrInvalidMethod)
}

func TestSep(t *testing.T) {
	assert.Equal(t, ';', Default().Sep())
}
