package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/automata-diagram/internal/config"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "fsmdiagram dev\n", out.String())
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	cfg := config.Default()
	cfg.Canvas.Seed = false
	require.NoError(t, config.Save(path, cfg))

	configPath, logLevel = path, "debug"
	t.Cleanup(func() { configPath, logLevel = "", "" })

	got, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", got.Log.Level)
	assert.Equal(t, 0, startGraph(got).NodeCount())

	logLevel = "chatty"
	_, err = loadConfig()
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestExportOptionsFollowCanvas(t *testing.T) {
	cfg := config.Default()
	cfg.Canvas.NodeWidth = 90
	opts := exportOptions(cfg)
	assert.Equal(t, 90.0, opts.Render.NodeWidth)
	assert.Equal(t, 40.0, opts.Render.NodeHeight)
	assert.Equal(t, 2, startGraph(config.Default()).NodeCount())
}
