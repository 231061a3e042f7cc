package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "png", c.ChartFormat)
	assert.Equal(t, 15, c.HistBins)
	assert.Equal(t, DefaultDateLayout, c.DateLayout)
	assert.Equal(t, 1, c.SheetIndex)
	assert.True(t, c.WriteXLSX)
	assert.Equal(t, "noshow-report", c.OutputDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hist_bins: 20\nchart_format: svg\n"), 0o644))
	t.Setenv("NOSHOW_CHART_FORMAT", "pdf")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, c.HistBins)
	assert.Equal(t, "pdf", c.ChartFormat)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := &Global{
		OutputDir:     "out",
		ChartFormat:   "svg",
		ChartWidthIn:  6,
		ChartHeightIn: 4,
		HistBins:      10,
		DateLayout:    DefaultDateLayout,
		SheetIndex:    2,
		LogLevel:      "debug",
		LogFormat:     "json",
	}
	require.NoError(t, Save(c, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", got.OutputDir)
	assert.Equal(t, 10, got.HistBins)
	assert.Equal(t, 2, got.SheetIndex)
	assert.Equal(t, "json", got.LogFormat)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := Global{ChartFormat: "png", ChartWidthIn: 8, ChartHeightIn: 5, HistBins: 15, DateLayout: DefaultDateLayout}
	require.NoError(t, base.Validate())

	bad := base
	bad.ChartFormat = "gif"
	assert.Error(t, bad.Validate())

	bad = base
	bad.HistBins = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.ChartWidthIn = 0
	assert.Error(t, bad.Validate())
}

func TestLoadNamedFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestLoadNamedFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hist_bins: [1,\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestDefaultsIgnoresFiles(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".noshow"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".noshow", "config.yaml"), []byte("hist_bins: 40\n"), 0o644))

	c, err := Defaults()
	require.NoError(t, err)
	assert.Equal(t, 15, c.HistBins)
}

func TestLoadDefaultFileMalformed(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".noshow"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".noshow", "config.yaml"), []byte("hist_bins: [1,\n"), 0o644))
	_, err := Load("")
	require.Error(t, err)
}
