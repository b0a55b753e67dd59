package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"EXODASH_CONFIG", "LISTEN_ADDR", "LOG_LEVEL", "ENV", "ARCHIVE_SOURCE", "ARCHIVE_URL",
	"ARCHIVE_TIMEOUT", "SNAPSHOT_PATH", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, SourceTAP, cfg.ArchiveSource)
	assert.Equal(t, DefaultArchiveURL, cfg.ArchiveURL)
	assert.Equal(t, 60*time.Second, cfg.ArchiveTimeout)
	assert.InDelta(t, 20.0, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.NotEmpty(t, cfg.Warnings)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ARCHIVE_SOURCE", "DuckDB")
	t.Setenv("SNAPSHOT_PATH", "/tmp/ps.duckdb")
	t.Setenv("ARCHIVE_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, SourceDuckDB, cfg.ArchiveSource)
	assert.Equal(t, "/tmp/ps.duckdb", cfg.SnapshotPath)
	assert.Equal(t, 5*time.Second, cfg.ArchiveTimeout)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, 7, cfg.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_InvalidNumbersWarn(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "fast")
	t.Setenv("ARCHIVE_TIMEOUT", "soon")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.InDelta(t, 20.0, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, 60*time.Second, cfg.ArchiveTimeout)
	assert.Contains(t, cfg.Warnings, `ignoring invalid RATE_LIMIT_RPS "fast"`)
	assert.Contains(t, cfg.Warnings, `ignoring invalid ARCHIVE_TIMEOUT "soon"`)
}

func TestLoadFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown source", env: map[string]string{"ARCHIVE_SOURCE": "ftp"}, wantErr: "ARCHIVE_SOURCE"},
		{name: "duckdb without snapshot", env: map[string]string{"ARCHIVE_SOURCE": "duckdb"}, wantErr: "SNAPSHOT_PATH"},
		{name: "non http url", env: map[string]string{"ARCHIVE_URL": "ftp://archive"}, wantErr: "ARCHIVE_URL"},
		{name: "production wildcard cors", env: map[string]string{"ENV": "production"}, wantErr: "CORS wildcard"},
		{name: "negative rate", env: map[string]string{"RATE_LIMIT_RPS": "-1"}, wantErr: "RATE_LIMIT_RPS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromEnv_ProductionWithOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dash.example")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "exodash.yaml", `
listen_addr: ":7000"
log_level: warn
archive_source: duckdb
snapshot_path: /data/ps.duckdb
archive_timeout: 90s
rate_limit_burst: 5
cors_allowed_origins: ["https://file.example"]
`)
	t.Setenv("LISTEN_ADDR", ":7001")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.ListenAddr, "env overrides file")
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.Equal(t, SourceDuckDB, cfg.ArchiveSource)
	assert.Equal(t, "/data/ps.duckdb", cfg.SnapshotPath)
	assert.Equal(t, 90*time.Second, cfg.ArchiveTimeout)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.InDelta(t, 20.0, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, []string{"https://file.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnv_ConfigFileVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXODASH_CONFIG", writeFile(t, "c.yaml", "listen_addr: \":7100\"\n"))

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.ListenAddr)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "listen_addr: [unterminated\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "timeout.yaml", "archive_timeout: forever\n"))
	require.ErrorContains(t, err, "archive_timeout")
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "info": slog.LevelInfo, "bogus": slog.LevelInfo,
	} {
		c := &Config{LogLevel: in}
		assert.Equal(t, want, c.SlogLevel(), in)
	}
}

func TestLoadDotEnv_FileNotFound(t *testing.T) {
	require.NoError(t, LoadDotEnv("/nonexistent/.env"))
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	t.Setenv("TEST_KEY", "")
	t.Setenv("TEST_QUOTED", "")
	t.Setenv("TEST_EXPORTED", "")
	envFile := writeFile(t, ".env", "# comment\nTEST_KEY=test_value\nTEST_QUOTED=\"quoted value\"\nexport TEST_EXPORTED=yes\nnot a pair\n")

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "test_value", os.Getenv("TEST_KEY"))
	assert.Equal(t, "quoted value", os.Getenv("TEST_QUOTED"))
	assert.Equal(t, "yes", os.Getenv("TEST_EXPORTED"))
}

func TestLoadDotEnv_EnvVarPrecedence(t *testing.T) {
	t.Setenv("TEST_PRECEDENCE_KEY", "from_env")
	envFile := writeFile(t, ".env", "TEST_PRECEDENCE_KEY=from_file\n")

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "from_env", os.Getenv("TEST_PRECEDENCE_KEY"))
}
