// Package config holds the server's tunables: segmentation, recognition,
// binarization and logging. Values come from defaults, then an optional YAML
// file, then GLYPHSEG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/glyphseg-mcp/internal/imaging"
	"github.com/ironsheep/glyphseg-mcp/internal/recognize"
	"github.com/ironsheep/glyphseg-mcp/internal/segment"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	// Segmentation
	XMergeRadius int    `yaml:"x_merge_radius"`
	YMergeRadius int    `yaml:"y_merge_radius"`
	MergeMode    string `yaml:"merge_mode"`
	MaxLabels    int    `yaml:"max_labels"`

	// Recognition
	Alphabet            string  `yaml:"alphabet"`
	Whitelist           string  `yaml:"whitelist"`
	Blacklist           string  `yaml:"blacklist"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	Workers             int     `yaml:"workers"`
	Language            string  `yaml:"language"`

	// Preprocessing
	Binarize  bool              `yaml:"binarize"`
	Binarizer imaging.Binarizer `yaml:"binarizer"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		XMergeRadius: segment.DefaultXMergeRadius,
		YMergeRadius: segment.DefaultYMergeRadius,
		MergeMode:    segment.MergeSinglePass.String(),

		Alphabet:            recognize.DefaultAlphabet,
		ConfidenceThreshold: recognize.DefaultConfidenceThreshold,
		Workers:             4,
		Language:            "eng",

		Binarize:  true,
		Binarizer: *imaging.DefaultBinarizer(),

		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. An empty path skips the file. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.XMergeRadius = envInt("GLYPHSEG_X_MERGE_RADIUS", c.XMergeRadius)
	c.YMergeRadius = envInt("GLYPHSEG_Y_MERGE_RADIUS", c.YMergeRadius)
	c.MergeMode = envOr("GLYPHSEG_MERGE_MODE", c.MergeMode)
	c.MaxLabels = envInt("GLYPHSEG_MAX_LABELS", c.MaxLabels)

	c.Alphabet = envOr("GLYPHSEG_ALPHABET", c.Alphabet)
	c.Whitelist = envOr("GLYPHSEG_WHITELIST", c.Whitelist)
	c.Blacklist = envOr("GLYPHSEG_BLACKLIST", c.Blacklist)
	c.ConfidenceThreshold = envFloat("GLYPHSEG_CONFIDENCE_THRESHOLD", c.ConfidenceThreshold)
	c.Workers = envInt("GLYPHSEG_WORKERS", c.Workers)
	c.Language = envOr("GLYPHSEG_LANGUAGE", c.Language)

	c.Binarize = envBool("GLYPHSEG_BINARIZE", c.Binarize)

	c.LogLevel = envOr("GLYPHSEG_LOG_LEVEL", c.LogLevel)
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	if c.XMergeRadius < 0 || c.YMergeRadius < 0 {
		return fmt.Errorf("%w: merge radii must be non-negative, got (%d,%d)", ErrInvalid, c.XMergeRadius, c.YMergeRadius)
	}
	if _, err := segment.ParseMergeMode(c.MergeMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Alphabet == "" {
		return fmt.Errorf("%w: alphabet is required", ErrInvalid)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence_threshold must be in [0,1], got %v", ErrInvalid, c.ConfidenceThreshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	if c.Language == "" {
		return fmt.Errorf("%w: language is required", ErrInvalid)
	}
	if c.Binarize {
		if err := c.Binarizer.Validate(); err != nil {
			return fmt.Errorf("%w: binarizer: %w", ErrInvalid, err)
		}
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Segment returns the extraction options.
func (c Config) Segment() (segment.Options, error) {
	mode, err := segment.ParseMergeMode(c.MergeMode)
	if err != nil {
		return segment.Options{}, err
	}
	opts := segment.DefaultOptions()
	opts.XMergeRadius = c.XMergeRadius
	opts.YMergeRadius = c.YMergeRadius
	opts.MergeMode = mode
	if c.MaxLabels > 0 {
		opts.MaxLabels = c.MaxLabels
	}
	return opts, nil
}

// Recognize returns the recognizer options. The binarizer is a copy, so
// later changes to c do not affect it.
func (c Config) Recognize() recognize.Options {
	opts := recognize.DefaultOptions()
	opts.Alphabet = c.Alphabet
	opts.Whitelist = c.Whitelist
	opts.Blacklist = c.Blacklist
	opts.ConfidenceThreshold = c.ConfidenceThreshold
	opts.Workers = c.Workers
	if c.Binarize {
		b := c.Binarizer
		opts.Binarizer = &b
	}
	return opts
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
