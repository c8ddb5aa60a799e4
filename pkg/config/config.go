// Package config loads tool settings from a YAML file and PPA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"ppa/pkg/models"
)

// DefaultPath is read when PPA_CONFIG is unset.
const DefaultPath = "ppa.yaml"

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Config holds the settings of one invocation.
type Config struct {
	Thresholds models.ThresholdSet `yaml:"thresholds"`
	Currency   string              `yaml:"currency"`
	ShelfRows  int                 `yaml:"shelf_rows"`

	Sources SourcesConfig `yaml:"sources"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourcesConfig locates the company and competitor datasets: file paths, or tables behind a DSN.
type SourcesConfig struct {
	Company         string `yaml:"company"`
	Competitor      string `yaml:"competitor"`
	DSN             string `yaml:"dsn"`
	CompanyTable    string `yaml:"company_table"`
	CompetitorTable string `yaml:"competitor_table"`
}

// OutputConfig selects the report format and destination (empty path = stdout).
type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Thresholds: models.ThresholdSet{ValueMax: 0.13, MainstreamMax: 0.17, PremiumMax: 1.0},
		Currency:   "₹",
		ShelfRows:  3,
		Sources: SourcesConfig{
			CompanyTable:    "company_skus",
			CompetitorTable: "competitor_skus",
		},
		Output:  OutputConfig{Format: FormatMarkdown},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path (PPA_CONFIG, then DefaultPath, when empty) over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
		if env := os.Getenv("PPA_CONFIG"); env != "" {
			path = env
		}
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnvOverrides() error {
	var errs []error
	envFloat(&c.Thresholds.ValueMax, "PPA_VALUE_MAX", &errs)
	envFloat(&c.Thresholds.MainstreamMax, "PPA_MAINSTREAM_MAX", &errs)
	envFloat(&c.Thresholds.PremiumMax, "PPA_PREMIUM_MAX", &errs)
	envString(&c.Currency, "PPA_CURRENCY")
	envInt(&c.ShelfRows, "PPA_SHELF_ROWS", &errs)
	envString(&c.Sources.Company, "PPA_COMPANY")
	envString(&c.Sources.Competitor, "PPA_COMPETITOR")
	envString(&c.Sources.DSN, "PPA_DSN")
	envString(&c.Output.Format, "PPA_FORMAT")
	envString(&c.Logging.Level, "PPA_LOG_LEVEL")
	return errors.Join(errs...)
}

// Validate checks ranges. Threshold ordering is deliberately not enforced; the engine reports it.
func (c Config) Validate() error {
	var errs []error
	for name, v := range map[string]float64{
		"value_max":      c.Thresholds.ValueMax,
		"mainstream_max": c.Thresholds.MainstreamMax,
		"premium_max":    c.Thresholds.PremiumMax,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			errs = append(errs, fmt.Errorf("invalid thresholds.%s %v: must be a finite number >= 0", name, v))
		}
	}
	if c.ShelfRows < 1 {
		errs = append(errs, fmt.Errorf("invalid shelf_rows %d: must be >= 1", c.ShelfRows))
	}
	switch c.Output.Format {
	case FormatMarkdown, FormatHTML, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid output.format %q: want markdown, html or json", c.Output.Format))
	}
	return errors.Join(errs...)
}

func envString(field *string, key string) {
	if val := os.Getenv(key); val != "" {
		*field = val
	}
}

func envInt(field *int, key string, errs *[]error) {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%s=%q: %w", key, val, err))
			return
		}
		*field = parsed
	}
}

func envFloat(field *float64, key string, errs *[]error) {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%s=%q: %w", key, val, err))
			return
		}
		*field = parsed
	}
}
