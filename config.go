package knnreader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default tuning values. They match the values the recognizer was trained and
// evaluated with; change them together with the training data.
const (
	DefaultMinContourArea = 50.0
	DefaultResizeWidth    = 20
	DefaultResizeHeight   = 30
	// DefaultGapTolerance is subtracted from the largest observed gap to get the
	// line/word break threshold. Empirical, not derived from resolution.
	DefaultGapTolerance = 10
	DefaultK            = 1
	DefaultBlurKernel   = 5
	DefaultBlockSize    = 11
	DefaultThresholdC   = 2
)

// Threshold methods accepted by Config.ThresholdMethod.
const (
	ThresholdGaussian = "gaussian"
	ThresholdMean     = "mean"
)

// Config holds every tunable of the recognition pipeline
type Config struct {
	// MinContourArea drops blobs whose contour area is below it (noise).
	MinContourArea float64 `yaml:"min_contour_area"`

	// ResizeWidth and ResizeHeight are the feature image dimensions.
	ResizeWidth  int `yaml:"resize_width"`
	ResizeHeight int `yaml:"resize_height"`

	GapTolerance int `yaml:"gap_tolerance"`

	// K is the neighbor count for the nearest-neighbor vote.
	K int `yaml:"k"`

	// BlurKernel is the Gaussian smoothing window applied before binarization.
	BlurKernel      int    `yaml:"blur_kernel"`
	ThresholdMethod string `yaml:"threshold_method"`
	BlockSize       int    `yaml:"block_size"`
	ThresholdC      int    `yaml:"threshold_c"`

	// LabelCharset maps single-byte training labels to runes.
	LabelCharset string `yaml:"label_charset"`

	// Workers bounds how many lines are classified concurrently.
	Workers int `yaml:"workers"`

	// DebugDir receives intermediate images when debug mode is on.
	DebugDir string `yaml:"debug_dir"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		MinContourArea:  DefaultMinContourArea,
		ResizeWidth:     DefaultResizeWidth,
		ResizeHeight:    DefaultResizeHeight,
		GapTolerance:    DefaultGapTolerance,
		K:               DefaultK,
		BlurKernel:      DefaultBlurKernel,
		ThresholdMethod: ThresholdGaussian,
		BlockSize:       DefaultBlockSize,
		ThresholdC:      DefaultThresholdC,
		LabelCharset:    CharsetLatin1,
		Workers:         1,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid field
func (c Config) Validate() error {
	switch {
	case c.MinContourArea < 0:
		return fmt.Errorf("invalid config: min_contour_area must not be negative, got %v", c.MinContourArea)
	case c.ResizeWidth <= 0 || c.ResizeHeight <= 0:
		return fmt.Errorf("invalid config: resize dimensions must be positive, got %dx%d", c.ResizeWidth, c.ResizeHeight)
	case c.GapTolerance < 0:
		return fmt.Errorf("invalid config: gap_tolerance must not be negative, got %d", c.GapTolerance)
	case c.K < 1:
		return fmt.Errorf("invalid config: k must be at least 1, got %d", c.K)
	case c.BlurKernel < 0 || (c.BlurKernel > 0 && c.BlurKernel%2 == 0):
		return fmt.Errorf("invalid config: blur_kernel must be 0 or odd, got %d", c.BlurKernel)
	case c.ThresholdMethod != ThresholdGaussian && c.ThresholdMethod != ThresholdMean:
		return fmt.Errorf("invalid config: unknown threshold_method %q", c.ThresholdMethod)
	case c.BlockSize < 3 || c.BlockSize%2 == 0:
		return fmt.Errorf("invalid config: block_size must be odd and at least 3, got %d", c.BlockSize)
	case c.Workers < 1:
		return fmt.Errorf("invalid config: workers must be at least 1, got %d", c.Workers)
	}
	if _, err := lookupCharset(c.LabelCharset); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// featureLen is the length of one flattened feature vector.
func (c Config) featureLen() int {
	return c.ResizeWidth * c.ResizeHeight
}
