package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/scanbar/internal/barcode"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Pipeline.Strict)
	assert.Equal(t, []string{"eng"}, cfg.Pipeline.OCR.Languages)
	assert.InDelta(t, 0.10, cfg.Pipeline.Label.NorthPenalty, 1e-9)
	assert.InDelta(t, 0.05, cfg.Pipeline.Label.SidePenalty, 1e-9)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestConfigValidate(t *testing.T) {
	mutate := func(f func(*Config)) Config {
		cfg := DefaultConfig()
		f(&cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "bad log level",
			cfg:     mutate(func(c *Config) { c.LogLevel = "trace" }),
			wantErr: "invalid log level",
		},
		{
			name:    "bad format",
			cfg:     mutate(func(c *Config) { c.Pipeline.Formats = []string{"qrcode", "bogus"} }),
			wantErr: "invalid barcode format",
		},
		{
			name:    "bad excluded page",
			cfg:     mutate(func(c *Config) { c.Pipeline.Exclude = []int{0} }),
			wantErr: "invalid excluded page",
		},
		{
			name:    "penalty above one",
			cfg:     mutate(func(c *Config) { c.Pipeline.Label.NorthPenalty = 1.5 }),
			wantErr: "label.north_penalty",
		},
		{
			name:    "negative padding",
			cfg:     mutate(func(c *Config) { c.Pipeline.Render.Padding = -1 }),
			wantErr: "render padding",
		},
		{
			name:    "zero png scale",
			cfg:     mutate(func(c *Config) { c.Pipeline.Render.PNGScale = 0 }),
			wantErr: "PNG scale",
		},
		{
			name:    "bad port",
			cfg:     mutate(func(c *Config) { c.Server.Port = 70000 }),
			wantErr: "invalid server port",
		},
		{
			name:    "bad upload size",
			cfg:     mutate(func(c *Config) { c.Server.MaxUploadMB = 0 }),
			wantErr: "max upload size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToPipelineOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.Strict = true
	cfg.Pipeline.Pages = "1-3"
	cfg.Pipeline.Exclude = []int{2}
	cfg.Pipeline.Formats = []string{"qrcode", "code128"}
	cfg.Pipeline.OCR.Enabled = true
	cfg.Pipeline.OCR.Languages = []string{"deu"}
	cfg.Pipeline.Label.NorthPenalty = 0.2

	opts, err := cfg.ToPipelineOptions()
	require.NoError(t, err)

	assert.True(t, opts.Strict)
	assert.Equal(t, "1-3", opts.Pages)
	assert.Equal(t, []int{2}, opts.Exclude)
	assert.Equal(t, []barcode.Format{barcode.FormatQRCode, barcode.FormatCode128}, opts.Formats)
	assert.True(t, opts.OCRFallback)
	assert.Equal(t, []string{"deu"}, opts.OCRLanguages)
	assert.InDelta(t, 0.2, opts.Label.NorthPenalty, 1e-9)
}

func TestToPipelineOptionsBadFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.Formats = []string{"nope"}

	_, err := cfg.ToPipelineOptions()
	assert.Error(t, err)
}
