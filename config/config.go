package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Channel names used as keys of CoreConfig.DataTypes.
const (
	ChannelSignal      = "signal"
	ChannelFrequencies = "frequencies"
	ChannelGradient    = "gradient"
	ChannelFeatures    = "features"
)

// EnvPrefix is the prefix of environment overrides, e.g. NANOTUNE_DB_FOLDER or
// NANOTUNE_DATABASE_HOST.
const EnvPrefix = "NANOTUNE"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete pipeline configuration. It is passed explicitly to
// every component; nothing reads a process-wide copy.
type Config struct {
	DBName   string `json:"db_name" yaml:"db_name" split_words:"true"`
	DBFolder string `json:"db_folder" yaml:"db_folder" split_words:"true"`
	LogLevel string `json:"log_level" yaml:"log_level" split_words:"true"`

	Core     CoreConfig     `json:"core" yaml:"core" ignored:"true"`
	Database DatabaseConfig `json:"database" yaml:"database" split_words:"true"`
}

// CoreConfig holds the tensor layout and feature definitions.
type CoreConfig struct {
	// StandardShapes maps a dimensionality ("1", "2") to the shape every
	// channel of such a record is resized to.
	StandardShapes map[string][]int `json:"standard_shapes" yaml:"standard_shapes"`

	// DataTypes maps channel names to their index in the exported tensor.
	DataTypes map[string]int `json:"data_types" yaml:"data_types"`

	// Features maps a category to the ordered feature names exported for it.
	Features map[string][]string `json:"features" yaml:"features"`

	FillValue float64 `json:"fill_value" yaml:"fill_value"`

	// OneDimensional lists the categories measured as 1D traces.
	OneDimensional []string `json:"one_dimensional" yaml:"one_dimensional"`

	// SignalCeiling is the largest value a normalized signal may take.
	SignalCeiling float64 `json:"signal_ceiling" yaml:"signal_ceiling"`
	// DotSignalScale is the range out-of-ceiling signals are compressed into.
	DotSignalScale float64 `json:"dot_signal_scale" yaml:"dot_signal_scale"`

	DefaultReadout string `json:"default_readout" yaml:"default_readout"`
}

// DatabaseConfig describes the postgres record store.
type DatabaseConfig struct {
	Host     string `json:"host" yaml:"host" split_words:"true"`
	Port     int    `json:"port" yaml:"port" split_words:"true"`
	User     string `json:"user" yaml:"user" split_words:"true"`
	Password string `json:"password" yaml:"password" split_words:"true"`
	Name     string `json:"name" yaml:"name" split_words:"true"`
	SSLMode  string `json:"ssl_mode" yaml:"ssl_mode" split_words:"true"`
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// Default returns the stock configuration.
func Default() *Config {
	pinchoffFeatures := []string{
		"amplitude", "slope", "low_signal", "high_signal", "residuals",
		"offset", "transition_signal", "low_voltage", "high_voltage",
		"transition_voltage",
	}
	dotFeatures := []string{"triple_points", "mean_signal", "signal_std"}

	return &Config{
		DBName:   "dev_test.db",
		DBFolder: ".",
		LogLevel: "info",
		Core: CoreConfig{
			StandardShapes: map[string][]int{
				"1": {100},
				"2": {50, 50},
			},
			DataTypes: map[string]int{
				ChannelSignal:      0,
				ChannelFrequencies: 1,
				ChannelGradient:    2,
				ChannelFeatures:    3,
			},
			Features: map[string][]string{
				"pinchoff":           pinchoffFeatures,
				"outerbarriers":      slices.Clone(pinchoffFeatures),
				"singledot":          dotFeatures,
				"doubledot":          slices.Clone(dotFeatures),
				"dotregime":          slices.Clone(dotFeatures),
				"coulomboscillation": {"peak_indx", "peak_distance", "peak_width"},
			},
			FillValue:      -1,
			OneDimensional: []string{"pinchoff", "coulomboscillation", "zerobiaspeak1D"},
			SignalCeiling:  1.0,
			DotSignalScale: 0.3,
			DefaultReadout: "transport",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "nanotune",
			SSLMode: "disable",
		},
	}
}

// Load builds a configuration from defaults, an optional file and the
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// mergeFile decodes a YAML or JSON file over the current values. Map keys
// present in the file override the defaults; other keys are kept.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(data, c)
	default:
		return yaml.Unmarshal(data, c)
	}
}

// Validate checks the invariants the exporter relies on.
func (c *Config) Validate() error {
	core := c.Core

	for _, name := range []string{ChannelSignal, ChannelFrequencies, ChannelGradient, ChannelFeatures} {
		if _, ok := core.DataTypes[name]; !ok {
			return fmt.Errorf("%w: data_types lacks %q", ErrInvalidConfig, name)
		}
	}
	seen := make(map[int]string, len(core.DataTypes))
	for name, idx := range core.DataTypes {
		if idx < 0 || idx >= len(core.DataTypes) {
			return fmt.Errorf("%w: data_types[%q]=%d out of range", ErrInvalidConfig, name, idx)
		}
		if other, dup := seen[idx]; dup {
			return fmt.Errorf("%w: data_types %q and %q share index %d", ErrInvalidConfig, name, other, idx)
		}
		seen[idx] = name
	}

	for _, dim := range []int{1, 2} {
		shape, ok := core.StandardShapes[strconv.Itoa(dim)]
		if !ok {
			return fmt.Errorf("%w: no standard shape for %dD data", ErrInvalidConfig, dim)
		}
		if len(shape) != dim {
			return fmt.Errorf("%w: standard shape %v is not %dD", ErrInvalidConfig, shape, dim)
		}
		for _, n := range shape {
			if n <= 0 {
				return fmt.Errorf("%w: standard shape %v has non-positive size", ErrInvalidConfig, shape)
			}
		}
	}

	if len(core.Features) == 0 {
		return fmt.Errorf("%w: no feature categories", ErrInvalidConfig)
	}
	if core.SignalCeiling <= 0 {
		return fmt.Errorf("%w: signal_ceiling must be positive", ErrInvalidConfig)
	}
	if core.DotSignalScale <= 0 || core.DotSignalScale > core.SignalCeiling {
		return fmt.Errorf("%w: dot_signal_scale must be in (0, signal_ceiling]", ErrInvalidConfig)
	}
	return nil
}
