// Package config loads roundex settings.
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("roundex.yaml").
//	    Load()
//
// Precedence: defaults, then the YAML file, then ROUNDEX_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the full roundex configuration.
type Config struct {
	Geometry GeometryConfig `yaml:"geometry" env:"GEOMETRY"`
	Mesh     MeshConfig     `yaml:"mesh" env:"MESH"`
	Eval     EvalConfig     `yaml:"eval" env:"EVAL"`
	Log      LogConfig      `yaml:"log" env:"LOG"`
}

// GeometryConfig holds the values used when a body leaves them at zero.
type GeometryConfig struct {
	// Corner facet count.
	Resolution int `yaml:"resolution" env:"RESOLUTION"`
	// Renderer hint, carried through unchanged.
	Convexity int `yaml:"convexity" env:"CONVEXITY"`
}

// MeshConfig controls tessellation.
type MeshConfig struct {
	// Marching-cubes cells along the longest axis.
	Cells int `yaml:"cells" env:"CELLS"`
}

// EvalConfig controls the Lisp engine.
type EvalConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Console encoding with stack traces on warnings.
	Development bool `yaml:"development" env:"DEVELOPMENT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Geometry: GeometryConfig{
			Resolution: 10,
			Convexity:  10,
		},
		Mesh: MeshConfig{
			Cells: 200,
		},
		Eval: EvalConfig{
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Geometry.Resolution <= 0 {
		errs = append(errs, "geometry.resolution must be positive")
	}
	if c.Geometry.Convexity <= 0 {
		errs = append(errs, "geometry.convexity must be positive")
	}
	if c.Mesh.Cells <= 0 {
		errs = append(errs, "mesh.cells must be positive")
	}
	if c.Eval.Timeout <= 0 {
		errs = append(errs, "eval.timeout must be positive")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level %q is not a valid level", c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.New("config validation failed: " + strings.Join(errs, "; "))
	}
	return nil
}

// NewLogger builds a zap logger from the log settings.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
