// Package config loads smart gallery settings from, in increasing priority,
// built-in defaults, an optional YAML file and SMART_GALLERY_* environment
// variables. Nested keys use a double underscore in the environment:
// SMART_GALLERY_STORE__BACKEND=badger sets store.backend.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment variable the loader reads.
	EnvPrefix = "SMART_GALLERY_"
	// ConfigPathEnvVar names a config file to load.
	ConfigPathEnvVar = EnvPrefix + "CONFIG"
	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "smart-gallery.yaml"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendS3     = "s3"
	BackendDynamo = "dynamodb"
)

// Tagger backends.
const (
	TaggerHeuristic = "heuristic"
	TaggerGemini    = "gemini"
)

// Config is the complete configuration.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Library LibraryConfig `koanf:"library"`
	Store   StoreConfig   `koanf:"store"`
	Tagger  TaggerConfig  `koanf:"tagger"`
	Enhance EnhanceConfig `koanf:"enhance"`
	Caption CaptionConfig `koanf:"caption"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// LibraryConfig controls media directory scanning.
type LibraryConfig struct {
	Dir      string `koanf:"dir"`
	MaxDepth int    `koanf:"max_depth"` // 0 = unlimited
	Limit    int    `koanf:"limit"`     // 0 = unlimited
}

// StoreConfig selects where galleries are persisted.
type StoreConfig struct {
	Backend     string `koanf:"backend"`
	Dir         string `koanf:"dir"`
	BadgerDir   string `koanf:"badger_dir"`
	S3Bucket    string `koanf:"s3_bucket"`
	S3Prefix    string `koanf:"s3_prefix"`
	DynamoTable string `koanf:"dynamo_table"`
}

type TaggerConfig struct {
	Backend string `koanf:"backend"`
	Model   string `koanf:"model"`
}

type EnhanceConfig struct {
	OutputDir    string `koanf:"output_dir"` // empty = "enhanced" beside each source
	MaxDimension int    `koanf:"max_dimension"`
	JPEGQuality  int    `koanf:"jpeg_quality"`
}

type CaptionConfig struct {
	Seed uint64 `koanf:"seed"` // 0 = time-seeded
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	base := ".smart-gallery"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".smart-gallery")
	}
	return &Config{
		Log:     LogConfig{Level: "info"},
		Library: LibraryConfig{Dir: "."},
		Store: StoreConfig{
			Backend:   BackendFile,
			Dir:       filepath.Join(base, "galleries"),
			BadgerDir: filepath.Join(base, "badger"),
			S3Prefix:  "galleries",
		},
		Tagger:  TaggerConfig{Backend: TaggerHeuristic},
		Enhance: EnhanceConfig{MaxDimension: 2048, JPEGQuality: 90},
	}
}

// Load builds the configuration. path names a YAML file; when empty the
// SMART_GALLERY_CONFIG variable and then ./smart-gallery.yaml are tried,
// and a missing default file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the file to load. An explicitly named file must
// exist; the fallbacks are optional.
func findConfigFile(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(ConfigPathEnvVar)
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile, nil
	}
	return "", nil
}

// envTransformFunc maps SMART_GALLERY_STORE__S3_BUCKET to store.s3_bucket.
// SMART_GALLERY_LOG_LEVEL is accepted as log.level; SMART_GALLERY_CONFIG is
// not a setting and is skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	switch key {
	case "config":
		return ""
	case "log_level":
		return "log.level"
	}
	return strings.ReplaceAll(key, "__", ".")
}

// Validate rejects settings the application cannot act on.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Dir == "" {
			errs = append(errs, errors.New("store.dir is required for the file backend"))
		}
	case BackendBadger:
		if c.Store.BadgerDir == "" {
			errs = append(errs, errors.New("store.badger_dir is required for the badger backend"))
		}
	case BackendS3:
		if c.Store.S3Bucket == "" {
			errs = append(errs, errors.New("store.s3_bucket is required for the s3 backend"))
		}
	case BackendDynamo:
		if c.Store.DynamoTable == "" {
			errs = append(errs, errors.New("store.dynamo_table is required for the dynamodb backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}

	switch c.Tagger.Backend {
	case TaggerHeuristic, TaggerGemini:
	default:
		errs = append(errs, fmt.Errorf("tagger.backend: unknown backend %q", c.Tagger.Backend))
	}

	if c.Enhance.MaxDimension <= 0 {
		errs = append(errs, fmt.Errorf("enhance.max_dimension must be positive, got %d", c.Enhance.MaxDimension))
	}
	if c.Enhance.JPEGQuality < 1 || c.Enhance.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("enhance.jpeg_quality must be 1-100, got %d", c.Enhance.JPEGQuality))
	}
	if c.Library.MaxDepth < 0 || c.Library.Limit < 0 {
		errs = append(errs, errors.New("library.max_depth and library.limit must not be negative"))
	}

	return errors.Join(errs...)
}
