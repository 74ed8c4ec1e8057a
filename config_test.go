package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	assert.Equal(t, 3, cfg.KernelSize)
	assert.Equal(t, 0.4, cfg.Crop.Threshold)
	assert.Equal(t, 2, cfg.Crop.BoundarySize)
	assert.Equal(t, 100, cfg.Solver.Iterations)
	assert.Equal(t, 0.1, cfg.Solver.Step)
	assert.Equal(t, 200.0/255, cfg.Detect.ThreshLow)
	assert.Equal(t, 220.0/255, cfg.Detect.ThreshHigh)
}

func TestParseConfigOverrides(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
kernel_size: 5
crop:
  threshold: 0.6
solver:
  method: iterative
  iterations: 10
`))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.KernelSize)
	assert.Equal(t, 0.6, cfg.Crop.Threshold)
	assert.Equal(t, DefaultBoundarySize, cfg.Crop.BoundarySize)

	s, ok := cfg.PoissonSolver().(*IterativeSolver)
	require.True(t, ok)
	assert.Equal(t, 10, s.Iterations)
	assert.Equal(t, 5, s.KernelSize)
	assert.True(t, s.BoundaryZero)

	_, ok = DefaultConfig().PoissonSolver().(SpectralSolver)
	assert.True(t, ok)
}

func TestParseConfigValidation(t *testing.T) {
	for name, doc := range map[string]string{
		"even kernel":     "kernel_size: 4",
		"zero iterations": "solver: {iterations: 0}",
		"unknown solver":  "solver: {method: multigrid}",
		"threshold":       "crop: {threshold: 1.5}",
		"hysteresis":      "detect: {thresh_low: 0.9, thresh_high: 0.5}",
		"color":           "detect: {box_color: [1, 2]}",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\nhuman: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.Human)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
