package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/scanbar/internal/barcode"
	"github.com/MeKo-Tech/scanbar/internal/label"
	"github.com/MeKo-Tech/scanbar/internal/pipeline"
	"github.com/MeKo-Tech/scanbar/internal/render"
)

// Config represents the complete configuration for the scanbar application.
// It includes settings for all commands (extract, serve) and supports loading
// from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Pipeline configuration
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// PipelineConfig contains barcode extraction pipeline settings.
type PipelineConfig struct {
	Strict  bool     `mapstructure:"strict" yaml:"strict" json:"strict"`
	Debug   bool     `mapstructure:"debug" yaml:"debug" json:"debug"`
	Pages   string   `mapstructure:"pages" yaml:"pages" json:"pages"`
	Exclude []int    `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	Formats []string `mapstructure:"formats" yaml:"formats" json:"formats"`

	// OCR fallback for pages without a text layer
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Label association settings
	Label LabelConfig `mapstructure:"label" yaml:"label" json:"label"`

	// Barcode regeneration settings
	Render RenderConfig `mapstructure:"render" yaml:"render" json:"render"`
}

// OCRConfig contains Tesseract fallback settings.
type OCRConfig struct {
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Languages []string `mapstructure:"languages" yaml:"languages" json:"languages"`
}

// LabelConfig contains label association tuning.
type LabelConfig struct {
	NorthPenalty float64 `mapstructure:"north_penalty" yaml:"north_penalty" json:"north_penalty"`
	SidePenalty  float64 `mapstructure:"side_penalty" yaml:"side_penalty" json:"side_penalty"`
}

// RenderConfig contains barcode regeneration output settings.
type RenderConfig struct {
	Padding  int `mapstructure:"padding" yaml:"padding" json:"padding"`
	PNGScale int `mapstructure:"png_scale" yaml:"png_scale" json:"png_scale"`
	SVGScale int `mapstructure:"svg_scale" yaml:"svg_scale" json:"svg_scale"`
}

// OutputConfig contains output settings.
type OutputConfig struct {
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	weights := label.DefaultWeights()
	renderOpts := render.DefaultOptions()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Pipeline: PipelineConfig{
			OCR: OCRConfig{
				Enabled:   false,
				Languages: []string{"eng"},
			},
			Label: LabelConfig{
				NorthPenalty: weights.NorthPenalty,
				SidePenalty:  weights.SidePenalty,
			},
			Render: RenderConfig{
				Padding:  renderOpts.Padding,
				PNGScale: renderOpts.PNGScale,
				SVGScale: renderOpts.SVGScale,
			},
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			MaxUploadMB:     50,
			TimeoutSec:      60,
			ShutdownTimeout: 10,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	for _, name := range c.Pipeline.Formats {
		if _, ok := barcode.ParseFormat(name); !ok {
			return fmt.Errorf("invalid barcode format: %s", name)
		}
	}
	for _, p := range c.Pipeline.Exclude {
		if p < 1 {
			return fmt.Errorf("invalid excluded page: %d (pages are numbered from 1)", p)
		}
	}

	if err := validatePenalty(c.Pipeline.Label.NorthPenalty, "label.north_penalty"); err != nil {
		return err
	}
	if err := validatePenalty(c.Pipeline.Label.SidePenalty, "label.side_penalty"); err != nil {
		return err
	}

	if c.Pipeline.Render.Padding < 0 {
		return fmt.Errorf("invalid render padding: %d (must not be negative)", c.Pipeline.Render.Padding)
	}
	if c.Pipeline.Render.PNGScale < 1 {
		return fmt.Errorf("invalid render PNG scale: %d (must be positive)", c.Pipeline.Render.PNGScale)
	}
	if c.Pipeline.Render.SVGScale < 1 {
		return fmt.Errorf("invalid render SVG scale: %d (must be positive)", c.Pipeline.Render.SVGScale)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}

	return nil
}

// ToPipelineOptions converts the config to the internal pipeline options.
func (c *Config) ToPipelineOptions() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	opts.Strict = c.Pipeline.Strict
	opts.Debug = c.Pipeline.Debug
	opts.Pages = c.Pipeline.Pages
	opts.Exclude = c.Pipeline.Exclude
	opts.OCRFallback = c.Pipeline.OCR.Enabled
	opts.OCRLanguages = c.Pipeline.OCR.Languages
	opts.Label = label.Weights{
		NorthPenalty: c.Pipeline.Label.NorthPenalty,
		SidePenalty:  c.Pipeline.Label.SidePenalty,
	}
	opts.Render = render.Options{
		Padding:  c.Pipeline.Render.Padding,
		PNGScale: c.Pipeline.Render.PNGScale,
		SVGScale: c.Pipeline.Render.SVGScale,
	}

	for _, name := range c.Pipeline.Formats {
		f, ok := barcode.ParseFormat(name)
		if !ok {
			return pipeline.Options{}, fmt.Errorf("invalid barcode format: %s", name)
		}
		opts.Formats = append(opts.Formats, f)
	}
	return opts, nil
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validatePenalty validates that a penalty weight is between 0.0 and 1.0.
func validatePenalty(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
