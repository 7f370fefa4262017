// Package config manages ptrid configuration using koanf/v2.
//
// Supports YAML files, environment variables, and CLI flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete ptrid configuration.
type Config struct {
	Health     HealthConfig     `koanf:"health"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Log        LogConfig        `koanf:"log"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Online     OnlineConfig     `koanf:"online"`
}

// HealthConfig holds the ConnectRPC health-check server configuration,
// used by the online daemon so an orchestrator can probe liveness.
type HealthConfig struct {
	// Addr is the health-check listen address (e.g., ":50051").
	Addr string `koanf:"addr"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g., ":9100").
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// TrainingType names one reference directory: a set of sample files whose
// aggregate byte-pair statistics define a classifiable payload type.
type TrainingType struct {
	// Name is the label printed in classification output.
	Name string `koanf:"name"`
	// Dir is the directory of training samples for this type.
	Dir string `koanf:"dir"`
}

// ClassifierConfig holds the comparison metric and the reference library
// definition of the online tool. The offline tool does not read it; it
// takes its directories as arguments and its metric from --mode.
type ClassifierConfig struct {
	// Metric selects the comparison function: "MC", "CHI2", or "ID".
	Metric string `koanf:"metric"`
	// Types lists the named training directories that make up the
	// reference library, in addition to the synthetic "random" type that
	// is always appended.
	Types []TrainingType `koanf:"types"`
	// CacheDir, if non-empty, enables on-disk memoization of per-file and
	// per-directory frequency vectors. The dumps are written beside the
	// training files and directories they describe ("<path>_<depth>.dmp",
	// "<dir>/dir_<depth>.dmp"), not under CacheDir; its value is not used
	// beyond switching the cache on.
	CacheDir string `koanf:"cache_dir"`
}

// OnlineConfig holds settings specific to live-traffic capture and
// session classification.
type OnlineConfig struct {
	// Interface is the network interface to capture on. Empty selects the
	// first suitable up, non-loopback interface automatically.
	Interface string `koanf:"interface"`
	// SaveDir is the directory captured traffic is dumped to as a pcap
	// file, one per run.
	SaveDir string `koanf:"save_dir"`
	// Duration bounds how long a capture run lasts.
	Duration time.Duration `koanf:"duration"`
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Health: HealthConfig{
			Addr: ":50051",
		},
		Metrics: MetricsConfig{
			Addr: ":9100",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Classifier: ClassifierConfig{
			Metric: "MC",
		},
		Online: OnlineConfig{
			Duration: 5 * time.Minute,
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for ptrid configuration.
// Variables are named PTRID_<section>_<key>, e.g., PTRID_METRICS_ADDR.
const envPrefix = "PTRID_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (PTRID_ prefix), and merges on top of DefaultConfig().
// Missing fields inherit defaults.
//
// Environment variable mapping:
//
//	PTRID_HEALTH_ADDR        -> health.addr
//	PTRID_METRICS_ADDR       -> metrics.addr
//	PTRID_METRICS_PATH       -> metrics.path
//	PTRID_LOG_LEVEL          -> log.level
//	PTRID_LOG_FORMAT         -> log.format
//	PTRID_CLASSIFIER_METRIC  -> classifier.metric
//	PTRID_ONLINE_INTERFACE   -> online.interface
//	PTRID_ONLINE_SAVE_DIR    -> online.save_dir
//	PTRID_ONLINE_DURATION    -> online.duration
//
// Uses koanf/v2 with file + env providers and YAML parser.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms PTRID_METRICS_ADDR -> metrics.addr and
// PTRID_ONLINE_SAVE_DIR -> online.save_dir.
// Strips the PTRID_ prefix, lowercases, and replaces the first _ (the one
// separating section from key) with .
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.Replace(s, "_", ".", 1)
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"health.addr":       defaults.Health.Addr,
		"metrics.addr":      defaults.Metrics.Addr,
		"metrics.path":      defaults.Metrics.Path,
		"log.level":         defaults.Log.Level,
		"log.format":        defaults.Log.Format,
		"classifier.metric": defaults.Classifier.Metric,
		"online.duration":   defaults.Online.Duration.String(),
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyMetricsAddr indicates the metrics listen address is empty.
	ErrEmptyMetricsAddr = errors.New("metrics.addr must not be empty")

	// ErrInvalidMetric indicates classifier.metric is not a recognized tag.
	ErrInvalidMetric = errors.New("classifier.metric must be MC, CHI2, or ID")

	// ErrEmptyTypeName indicates a training type has no name.
	ErrEmptyTypeName = errors.New("classifier type name must not be empty")

	// ErrEmptyTypeDir indicates a training type has no directory.
	ErrEmptyTypeDir = errors.New("classifier type dir must not be empty")

	// ErrDuplicateTypeName indicates two training types share a name.
	ErrDuplicateTypeName = errors.New("duplicate classifier type name")

	// ErrInvalidDuration indicates online.duration is not positive.
	ErrInvalidDuration = errors.New("online.duration must be > 0")
)

// Validate checks the configuration for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if cfg.Metrics.Addr == "" {
		return ErrEmptyMetricsAddr
	}

	if _, err := ParseMetricTag(cfg.Classifier.Metric); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMetric, cfg.Classifier.Metric)
	}

	if err := validateTypes(cfg.Classifier.Types); err != nil {
		return err
	}

	if cfg.Online.Duration <= 0 {
		return ErrInvalidDuration
	}

	return nil
}

// recognizedMetricTags lists the classifier.metric strings Validate
// accepts, kept independent of engine.ParseMetric so this package does not
// need to import engine purely for validation.
var recognizedMetricTags = map[string]bool{
	"MC":   true,
	"CHI2": true,
	"ID":   true,
}

// ParseMetricTag reports whether s (case-insensitive) is a recognized
// classifier metric tag, returning the canonical upper-case form.
func ParseMetricTag(s string) (string, error) {
	upper := strings.ToUpper(s)
	if !recognizedMetricTags[upper] {
		return "", fmt.Errorf("unknown metric tag %q", s)
	}
	return upper, nil
}

// validateTypes checks each declarative training-type entry for
// correctness.
func validateTypes(types []TrainingType) error {
	seen := make(map[string]struct{}, len(types))

	for i, t := range types {
		if t.Name == "" {
			return fmt.Errorf("classifier.types[%d]: %w", i, ErrEmptyTypeName)
		}
		if t.Dir == "" {
			return fmt.Errorf("classifier.types[%d]: %w", i, ErrEmptyTypeDir)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("classifier.types[%d] name %q: %w", i, t.Name, ErrDuplicateTypeName)
		}
		seen[t.Name] = struct{}{}
	}

	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
//
// Recognized values: "debug", "info", "warn", "error" (case-insensitive).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
