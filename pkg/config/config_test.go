package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dd0wney/cluso-netgraph/pkg/logging"
	"github.com/dd0wney/cluso-netgraph/pkg/visualization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "netgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, AlgorithmForce, cfg.Layout.Algorithm)
	assert.Equal(t, 0.45, cfg.Viewport.MinZoom)
	assert.Equal(t, 2.6, cfg.Viewport.MaxZoom)
	assert.Equal(t, 0.7, cfg.Viewport.LabelZoomThreshold)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
canvas:
  width: 1600
layout:
  algorithm: circular
  seed: 7
  timeout: 2s
viewport:
  max_zoom: 3
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1600, cfg.Canvas.Width)
	assert.Equal(t, 800, cfg.Canvas.Height, "unset keys keep defaults")
	assert.Equal(t, AlgorithmCircular, cfg.Layout.Algorithm)
	assert.Equal(t, int64(7), cfg.Layout.Seed)
	assert.Equal(t, 2*time.Second, cfg.Layout.Timeout)
	assert.Equal(t, 3.0, cfg.Viewport.MaxZoom)
	assert.Equal(t, 0.45, cfg.Viewport.MinZoom)
	assert.Equal(t, logging.DebugLevel, cfg.LogLevel())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "canvas: [1, 2"},
		{"negative width", "canvas:\n  width: -5\n"},
		{"unknown algorithm", "layout:\n  algorithm: spring\n"},
		{"inverted zoom", "viewport:\n  min_zoom: 3\n  max_zoom: 1\n"},
		{"font bounds", "render:\n  min_font_size: 20\n  max_font_size: 10\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"supersample", "render:\n  supersample: 9\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Canvas.Width)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"NETGRAPH_LOG_LEVEL":        "warn",
		"NETGRAPH_METRICS_ADDR":     ":9108",
		"NETGRAPH_EVENTS_ADDR":      "tcp://127.0.0.1:40899",
		"NETGRAPH_CANVAS_WIDTH":     "640",
		"NETGRAPH_LAYOUT_SEED":      "99",
		"NETGRAPH_LAYOUT_ALGORITHM": "circular",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":9108", cfg.Metrics.Addr)
	assert.Equal(t, "tcp://127.0.0.1:40899", cfg.Events.Addr)
	assert.Equal(t, 640, cfg.Canvas.Width)
	assert.Equal(t, 800, cfg.Canvas.Height)
	assert.Equal(t, int64(99), cfg.Layout.Seed)
	assert.Equal(t, AlgorithmCircular, cfg.Layout.Algorithm)
}

func TestApplyEnv_BadNumber(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "NETGRAPH_CANVAS_HEIGHT" {
			return "tall", true
		}
		return "", false
	}
	err := Default().applyEnv(lookup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "NETGRAPH_CANVAS_HEIGHT")
}

func TestConverters(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.applyEnv(noEnv))
	cfg.Canvas = CanvasConfig{Width: 900, Height: 600}
	cfg.Layout.Seed = 5
	cfg.Layout.Iterations = 120
	cfg.Layout.Clearance = 20
	cfg.Layout.Timeout = time.Second
	cfg.Viewport.ClickSlop = 6
	cfg.Render.MaxFontSize = 15

	lc := cfg.LayoutConfig()
	def := visualization.DefaultLayoutConfig()
	assert.Equal(t, 900.0, lc.Width)
	assert.Equal(t, 600.0, lc.Height)
	assert.Equal(t, int64(5), lc.Seed)
	assert.Equal(t, 120, lc.Iterations)
	assert.Equal(t, 20.0, lc.Clearance)
	assert.Equal(t, def.Padding, lc.Padding, "zero keeps the solver default")
	assert.Equal(t, def.SpringLength, lc.SpringLength)

	vo := cfg.ViewportOptions()
	assert.Equal(t, 900.0, vo.Width)
	assert.Equal(t, 6.0, vo.ClickSlop)
	assert.Equal(t, 20.0, vo.Clearance)
	assert.Equal(t, int64(5), vo.Seed)
	assert.Equal(t, time.Second, vo.LayoutTimeout)

	ro := cfg.RenderOptions()
	assert.Equal(t, 15.0, ro.Fit.MaxFontSize)
	assert.Equal(t, 7.0, ro.Fit.MinFontSize)
	assert.Equal(t, 0.7, ro.LabelZoomThreshold)
}

func TestNewLayout(t *testing.T) {
	cfg := Default()
	_, ok := cfg.NewLayout().(*visualization.ForceDirectedLayout)
	assert.True(t, ok)

	cfg.Layout.Algorithm = AlgorithmCircular
	_, ok = cfg.NewLayout().(*visualization.CircularLayout)
	assert.True(t, ok)
}
