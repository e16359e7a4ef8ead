package knnreader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig() is invalid: %v", err)
	}
	if cfg.featureLen() != 600 {
		t.Errorf("featureLen() = %d, want 600", cfg.featureLen())
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
gap_tolerance: 4
k: 3
threshold_method: mean
label_charset: Windows-1254
workers: 8
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := DefaultConfig()
	want.GapTolerance = 4
	want.K = 3
	want.ThresholdMethod = ThresholdMean
	want.LabelCharset = "Windows-1254"
	want.Workers = 8
	if cfg != want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"Malformed YAML", "k: [1, 2", "failed to parse config"},
		{"Wrong type", "k: three", "failed to parse config"},
		{"Invalid value", "block_size: 4", "block_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("LoadConfig() error = %v, want it to mention %q", err, tt.errText)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"Negative area", func(c *Config) { c.MinContourArea = -1 }},
		{"Zero width", func(c *Config) { c.ResizeWidth = 0 }},
		{"Negative height", func(c *Config) { c.ResizeHeight = -30 }},
		{"Negative tolerance", func(c *Config) { c.GapTolerance = -1 }},
		{"Zero k", func(c *Config) { c.K = 0 }},
		{"Even blur kernel", func(c *Config) { c.BlurKernel = 4 }},
		{"Unknown threshold", func(c *Config) { c.ThresholdMethod = "otsu" }},
		{"Even block size", func(c *Config) { c.BlockSize = 10 }},
		{"Tiny block size", func(c *Config) { c.BlockSize = 1 }},
		{"Zero workers", func(c *Config) { c.Workers = 0 }},
		{"Unknown charset", func(c *Config) { c.LabelCharset = "utf-8" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.HasPrefix(err.Error(), "invalid config") {
				t.Errorf("error %q lacks the invalid config prefix", err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.BlurKernel = 0
	cfg.GapTolerance = 0
	cfg.MinContourArea = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero blur, tolerance and area should be valid: %v", err)
	}
}
