// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Archive source kinds.
const (
	SourceTAP    = "tap"
	SourceDuckDB = "duckdb"
)

// DefaultArchiveURL is the NASA Exoplanet Archive TAP sync endpoint.
const DefaultArchiveURL = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"

type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Upstream catalog source.
	ArchiveSource  string        // "tap" (default) or "duckdb"
	ArchiveURL     string        // TAP sync endpoint
	ArchiveTimeout time.Duration // per-query timeout (default 60s)
	SnapshotPath   string        // DuckDB snapshot file, required for the duckdb source

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 20)
	RateLimitBurst int     // burst capacity (default 40)

	// CORS
	CORSAllowedOrigins []string // allowed origins for the JSON API (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// fileConfig is the YAML config file layout. Unset keys keep lower-precedence
// values.
type fileConfig struct {
	ListenAddr         string   `yaml:"listen_addr"`
	LogLevel           string   `yaml:"log_level"`
	Env                string   `yaml:"env"`
	ArchiveSource      string   `yaml:"archive_source"`
	ArchiveURL         string   `yaml:"archive_url"`
	ArchiveTimeout     string   `yaml:"archive_timeout"`
	SnapshotPath       string   `yaml:"snapshot_path"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables, layered over
// the YAML file named by EXODASH_CONFIG when set.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("EXODASH_CONFIG"))
}

// Load builds the configuration from the optional YAML file at path,
// environment variables and defaults, in increasing order of precedence
// file < env. Callers apply flag overrides afterwards and call Validate.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	c.ListenAddr = fc.ListenAddr
	c.LogLevel = fc.LogLevel
	c.Env = fc.Env
	c.ArchiveSource = fc.ArchiveSource
	c.ArchiveURL = fc.ArchiveURL
	c.SnapshotPath = fc.SnapshotPath
	c.RateLimitRPS = fc.RateLimitRPS
	c.RateLimitBurst = fc.RateLimitBurst
	c.CORSAllowedOrigins = compactNonEmpty(fc.CORSAllowedOrigins)
	if fc.ArchiveTimeout != "" {
		d, err := time.ParseDuration(fc.ArchiveTimeout)
		if err != nil {
			return fmt.Errorf("parse config %s: archive_timeout: %w", path, err)
		}
		c.ArchiveTimeout = d
	}
	return nil
}

func (c *Config) loadEnv() {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Env, "ENV")
	setString(&c.ArchiveSource, "ARCHIVE_SOURCE")
	setString(&c.ArchiveURL, "ARCHIVE_URL")
	setString(&c.SnapshotPath, "SNAPSHOT_PATH")

	if v := os.Getenv("ARCHIVE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ArchiveTimeout = d
		} else {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring invalid ARCHIVE_TIMEOUT %q", v))
		}
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRPS = f
		} else {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring invalid RATE_LIMIT_RPS %q", v))
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitBurst = n
		} else {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring invalid RATE_LIMIT_BURST %q", v))
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.CORSAllowedOrigins = compactNonEmpty(origins)
	}
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.ArchiveSource == "" {
		c.ArchiveSource = SourceTAP
	}
	c.ArchiveSource = strings.ToLower(c.ArchiveSource)
	if c.ArchiveURL == "" {
		c.ArchiveURL = DefaultArchiveURL
	}
	if c.ArchiveTimeout == 0 {
		c.ArchiveTimeout = 60 * time.Second
	}
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = 20
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = 40
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
		if !c.IsProduction() {
			c.Warnings = append(c.Warnings, "CORS_ALLOWED_ORIGINS not set, allowing all origins")
		}
	}
}

// Validate reports configuration errors. Production mode rejects the CORS
// wildcard.
func (c *Config) Validate() error {
	var errs []error
	switch c.ArchiveSource {
	case SourceTAP:
		if !strings.HasPrefix(c.ArchiveURL, "http://") && !strings.HasPrefix(c.ArchiveURL, "https://") {
			errs = append(errs, fmt.Errorf("ARCHIVE_URL must be an http(s) URL, got %q", c.ArchiveURL))
		}
	case SourceDuckDB:
		if c.SnapshotPath == "" {
			errs = append(errs, errors.New("SNAPSHOT_PATH is required when ARCHIVE_SOURCE=duckdb"))
		}
	default:
		errs = append(errs, fmt.Errorf("ARCHIVE_SOURCE must be %q or %q, got %q", SourceTAP, SourceDuckDB, c.ArchiveSource))
	}
	if c.ArchiveTimeout < 0 {
		errs = append(errs, errors.New("ARCHIVE_TIMEOUT must not be negative"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	// Production mode: insecure defaults are fatal errors.
	if c.IsProduction() {
		for _, o := range c.CORSAllowedOrigins {
			if o == "*" {
				errs = append(errs, errors.New("CORS wildcard (*) is not allowed in production (ENV=production)"))
				break
			}
		}
	}
	return errors.Join(errs...)
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
