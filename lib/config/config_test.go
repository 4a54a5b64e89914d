package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.05, cfg.CourtyardLineWidth)
	assert.Equal(t, 0.12, cfg.SilkLineWidth)
	assert.Equal(t, 0.25, cfg.RoundRectRadiusRatio)
	assert.Equal(t, 0.1, cfg.ManufacturingTolerance)
	assert.Equal(t, "_ThermalVias", cfg.ThermalViaSuffix)
	assert.Contains(t, cfg.LibNameFormat, "{category}")
	assert.Greater(t, cfg.TextSilk.SizeNom, 0.0)
	assert.Greater(t, cfg.TextFab.SizeNom, 0.0)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("silk_line_width: 0.15\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.15, cfg.SilkLineWidth)
	// untouched values come from the defaults
	assert.Equal(t, Default().FabLineWidth, cfg.FabLineWidth)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("silk_line_width: -1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFabBevelSize(t *testing.T) {
	cfg := &GlobalConfig{FabBevelSizeAbsolute: 1.0, FabBevelSizeRelative: 0.25}
	assert.Equal(t, 0.5, cfg.FabBevelSize(2.0))  // relative governs small bodies
	assert.Equal(t, 1.0, cfg.FabBevelSize(10.0)) // capped at the absolute size
}

func TestSilkPadOffset(t *testing.T) {
	cfg := &GlobalConfig{SilkPadClearance: 0.2, SilkLineWidth: 0.12}
	assert.InDelta(t, 0.26, cfg.SilkPadOffset(), 1e-9)
}
