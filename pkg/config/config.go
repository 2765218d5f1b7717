// Package config loads the netgraph host configuration from YAML with
// NETGRAPH_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/logging"
	"github.com/dd0wney/cluso-netgraph/pkg/render"
	"github.com/dd0wney/cluso-netgraph/pkg/validation"
	"github.com/dd0wney/cluso-netgraph/pkg/viewport"
	"github.com/dd0wney/cluso-netgraph/pkg/visualization"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every load or validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Layout algorithms accepted by Layout.Algorithm.
const (
	AlgorithmForce    = "force"
	AlgorithmCircular = "circular"
)

// Config is the root of the YAML document.
type Config struct {
	Canvas   CanvasConfig   `yaml:"canvas"`
	Layout   LayoutConfig   `yaml:"layout"`
	Viewport ViewportConfig `yaml:"viewport"`
	Render   RenderConfig   `yaml:"render"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Events   EventsConfig   `yaml:"events"`
}

// CanvasConfig is the drawing surface in pixels.
type CanvasConfig struct {
	Width  int `yaml:"width" validate:"gt=0,lte=16384"`
	Height int `yaml:"height" validate:"gt=0,lte=16384"`
}

// LayoutConfig holds the solver knobs an operator may want to touch.
// Zero values fall back to the solver defaults.
type LayoutConfig struct {
	Algorithm         string        `yaml:"algorithm" validate:"oneof=force circular"`
	Seed              int64         `yaml:"seed"`
	Iterations        int           `yaml:"iterations" validate:"gte=0"`
	Padding           float64       `yaml:"padding" validate:"gte=0"`
	Clearance         float64       `yaml:"clearance" validate:"gte=0"`
	SpringLength      float64       `yaml:"spring_length" validate:"gte=0"`
	RepulsionStrength float64       `yaml:"repulsion_strength" validate:"gte=0"`
	CleanupPasses     int           `yaml:"cleanup_passes" validate:"gte=0"`
	MaxPairWork       int           `yaml:"max_pair_work" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
}

// ViewportConfig drives the interaction controller.
type ViewportConfig struct {
	MinZoom            float64 `yaml:"min_zoom" validate:"gt=0"`
	MaxZoom            float64 `yaml:"max_zoom" validate:"gt=0"`
	WheelSensitivity   float64 `yaml:"wheel_sensitivity" validate:"gt=0"`
	LabelZoomThreshold float64 `yaml:"label_zoom_threshold" validate:"gte=0"`
	ClickSlop          float64 `yaml:"click_slop" validate:"gte=0"`
	RelaxPasses        int     `yaml:"relax_passes" validate:"gte=0"`
}

// RenderConfig controls the raster surface and label fitting.
type RenderConfig struct {
	Supersample int     `yaml:"supersample" validate:"gte=1,lte=4"`
	MaxFontSize float64 `yaml:"max_font_size" validate:"gt=0"`
	MinFontSize float64 `yaml:"min_font_size" validate:"gt=0"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
}

// MetricsConfig is the Prometheus listener; empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// EventsConfig is the mangos pub socket URL; empty disables it.
type EventsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	fit := geometry.DefaultFitOptions()
	return &Config{
		Canvas: CanvasConfig{Width: 1200, Height: 800},
		Layout: LayoutConfig{Algorithm: AlgorithmForce},
		Viewport: ViewportConfig{
			MinZoom:            viewport.DefaultMinZoom,
			MaxZoom:            viewport.DefaultMaxZoom,
			WheelSensitivity:   0.0015,
			LabelZoomThreshold: render.DefaultLabelZoomThreshold,
			ClickSlop:          4,
			RelaxPasses:        6,
		},
		Render: RenderConfig{
			Supersample: 2,
			MaxFontSize: fit.MaxFontSize,
			MinFontSize: fit.MinFontSize,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides a handful of keys from NETGRAPH_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("NETGRAPH_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("NETGRAPH_METRICS_ADDR"); ok {
		c.Metrics.Addr = v
	}
	if v, ok := lookup("NETGRAPH_EVENTS_ADDR"); ok {
		c.Events.Addr = v
	}
	if v, ok := lookup("NETGRAPH_LAYOUT_ALGORITHM"); ok {
		c.Layout.Algorithm = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"NETGRAPH_CANVAS_WIDTH", &c.Canvas.Width},
		{"NETGRAPH_CANVAS_HEIGHT", &c.Canvas.Height},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, e.key, err)
		}
		*e.dst = n
	}

	if v, ok := lookup("NETGRAPH_LAYOUT_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: NETGRAPH_LAYOUT_SEED: %w", ErrInvalidConfig, err)
		}
		c.Layout.Seed = seed
	}
	return nil
}

// Validate checks field tags first, then the cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	err := validation.NewConfigValidator("Config").
		LessFloat("Viewport.Zoom", c.Viewport.MinZoom, c.Viewport.MaxZoom).
		When(c.Render.MinFontSize > c.Render.MaxFontSize, func(cv *validation.ConfigValidator) {
			cv.Custom("Render.FontSize", func() error {
				return fmt.Errorf("min %g exceeds max %g", c.Render.MinFontSize, c.Render.MaxFontSize)
			})
		}).
		When(c.Viewport.LabelZoomThreshold > 0, func(cv *validation.ConfigValidator) {
			cv.RangeFloat("Viewport.LabelZoomThreshold", c.Viewport.LabelZoomThreshold,
				c.Viewport.MinZoom, c.Viewport.MaxZoom)
		}).
		Validate()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LayoutConfig returns the solver parameters for the configured canvas.
func (c *Config) LayoutConfig() visualization.LayoutConfig {
	lc := visualization.DefaultLayoutConfig()
	lc.Width = float64(c.Canvas.Width)
	lc.Height = float64(c.Canvas.Height)
	lc.Seed = c.Layout.Seed
	lc.Iterations = validation.DefaultOr(c.Layout.Iterations, lc.Iterations)
	lc.Padding = validation.DefaultOr(c.Layout.Padding, lc.Padding)
	lc.Clearance = validation.DefaultOr(c.Layout.Clearance, lc.Clearance)
	lc.SpringLength = validation.DefaultOr(c.Layout.SpringLength, lc.SpringLength)
	lc.RepulsionStrength = validation.DefaultOr(c.Layout.RepulsionStrength, lc.RepulsionStrength)
	lc.CleanupPasses = validation.DefaultOr(c.Layout.CleanupPasses, lc.CleanupPasses)
	lc.MaxPairWork = c.Layout.MaxPairWork
	return lc
}

// NewLayout builds the configured layout algorithm.
func (c *Config) NewLayout() visualization.Layout {
	if c.Layout.Algorithm == AlgorithmCircular {
		return visualization.NewCircularLayout(c.LayoutConfig())
	}
	return visualization.NewForceDirectedLayout(c.LayoutConfig())
}

// ViewportOptions returns the controller options.
func (c *Config) ViewportOptions() viewport.Options {
	opts := viewport.DefaultOptions()
	opts.Width = float64(c.Canvas.Width)
	opts.Height = float64(c.Canvas.Height)
	opts.MinZoom = c.Viewport.MinZoom
	opts.MaxZoom = c.Viewport.MaxZoom
	opts.WheelSensitivity = c.Viewport.WheelSensitivity
	opts.ClickSlop = c.Viewport.ClickSlop
	opts.RelaxPasses = c.Viewport.RelaxPasses
	opts.Clearance = c.LayoutConfig().Clearance
	opts.Seed = c.Layout.Seed
	opts.LayoutTimeout = c.Layout.Timeout
	return opts
}

// RenderOptions returns the renderer options.
func (c *Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.LabelZoomThreshold = c.Viewport.LabelZoomThreshold
	opts.Fit.MaxFontSize = c.Render.MaxFontSize
	opts.Fit.MinFontSize = c.Render.MinFontSize
	return opts
}

// LogLevel parses the configured level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}
