// Package config loads uncomment settings from defaults, an optional config
// file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/seanhalberthal/uncomment/internal/jsonc"
)

// errUnknownFormat indicates a config file with an unsupported extension.
var errUnknownFormat = errors.New("unknown config file format")

// Config holds all runtime settings.
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Limits LimitsConfig `yaml:"limits" json:"limits"`
	Cache  CacheConfig  `yaml:"cache" json:"cache"`
	Batch  BatchConfig  `yaml:"batch" json:"batch"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Address                string   `yaml:"address" json:"address"`
	ReadTimeoutSeconds     int      `yaml:"read_timeout_seconds" json:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `yaml:"write_timeout_seconds" json:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds" json:"shutdown_timeout_seconds"`
	AllowedOrigins         []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// LimitsConfig bounds what a single client may submit.
type LimitsConfig struct {
	MaxInputBytes int64   `yaml:"max_input_bytes" json:"max_input_bytes"`
	RatePerSecond float64 `yaml:"rate_per_second" json:"rate_per_second"`
	Burst         int     `yaml:"burst" json:"burst"`
}

// CacheConfig sizes the result cache. A size of 0 disables caching.
type CacheConfig struct {
	Size int `yaml:"size" json:"size"`
}

// BatchConfig controls multi-file runs.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Format string `yaml:"format" json:"format"`
	Level  string `yaml:"level" json:"level"`
	Dir    string `yaml:"dir" json:"dir"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Address:                ":8080",
			ReadTimeoutSeconds:     10,
			WriteTimeoutSeconds:    30,
			ShutdownTimeoutSeconds: 5,
		},
		Limits: LimitsConfig{
			MaxInputBytes: 1 << 20,
			RatePerSecond: 10,
			Burst:         20,
		},
		Cache: CacheConfig{Size: 256},
		Batch: BatchConfig{Concurrency: 8},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Load builds the configuration. An empty path falls back to
// UNCOMMENT_CONFIG; with neither set only defaults and the environment apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if path == "" {
		path = strings.TrimSpace(os.Getenv("UNCOMMENT_CONFIG"))
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	// #nosec G304 -- path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json", ".jsonc":
		return jsonc.Unmarshal(data, cfg)
	default:
		return errUnknownFormat
	}
}

func applyEnv(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Address = port
	}
	setString(&cfg.Server.Address, "UNCOMMENT_ADDR")
	setString(&cfg.Log.Format, "UNCOMMENT_LOG_FORMAT")
	setString(&cfg.Log.Level, "UNCOMMENT_LOG_LEVEL")
	setString(&cfg.Log.Dir, "UNCOMMENT_LOG_DIR")

	if origins := strings.TrimSpace(os.Getenv("UNCOMMENT_ALLOWED_ORIGINS")); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}

	var errs []error
	errs = append(errs,
		setInt(&cfg.Cache.Size, "UNCOMMENT_CACHE_SIZE"),
		setInt(&cfg.Batch.Concurrency, "UNCOMMENT_BATCH_CONCURRENCY"),
		setInt(&cfg.Limits.Burst, "UNCOMMENT_RATE_BURST"),
		setInt64(&cfg.Limits.MaxInputBytes, "UNCOMMENT_MAX_INPUT_BYTES"),
		setFloat(&cfg.Limits.RatePerSecond, "UNCOMMENT_RATE_LIMIT"),
	)
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	if c.Limits.MaxInputBytes <= 0 {
		errs = append(errs, errors.New("limits.max_input_bytes must be positive"))
	}
	if c.Limits.RatePerSecond < 0 || c.Limits.Burst < 0 {
		errs = append(errs, errors.New("limits.rate_per_second and limits.burst must not be negative"))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, errors.New("cache.size must not be negative"))
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, errors.New("batch.concurrency must be at least 1"))
	}
	return errors.Join(errs...)
}

// ReadTimeout returns the server read timeout.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns how long graceful shutdown may take.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}
