package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covcheck/internal/coverity"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.Instances)
	assert.Equal(t, 30*time.Second, cfg.Connection.Timeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ":9010", cfg.Server.Listen)
	assert.NoError(t, cfg.Validate())
}

func TestLoader_LoadFromFile(t *testing.T) {
	path := writeConfig(t, `
instances:
  - url: http://coverity.example.com
    username: admin
    password: secret
  - url: https://other.example.com:8443
connection:
  timeout: 45s
cache:
  ttl: 1h
log:
  level: debug
  format: json
`)

	loader := NewLoader()
	cfg, err := loader.LoadFromFile(path)

	require.NoError(t, err)
	require.Len(t, cfg.Instances, 2)
	assert.Equal(t, "http://coverity.example.com", cfg.Instances[0].URL)
	assert.Equal(t, "admin", cfg.Instances[0].Username)
	assert.Equal(t, 45*time.Second, cfg.Connection.Timeout)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9010", cfg.Server.Listen)
}

func TestLoader_LoadFromFile_Missing(t *testing.T) {
	_, err := NewLoader().LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoader_LoadFromFile_Invalid(t *testing.T) {
	path := writeConfig(t, `
log:
  level: chatty
`)

	_, err := NewLoader().LoadFromFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoader_Load_ConfigPathEnv(t *testing.T) {
	path := writeConfig(t, `
instances:
  - url: http://from-env-path.example.com
`)
	t.Setenv(EnvConfigPath, path)

	cfg, err := NewLoader().Load()

	require.NoError(t, err)
	require.Len(t, cfg.Instances, 1)
	assert.Equal(t, "http://from-env-path.example.com", cfg.Instances[0].URL)
}

func TestLoader_Load_WithEnvOverride(t *testing.T) {
	path := writeConfig(t, `
log:
  level: info
`)
	t.Setenv(EnvConfigPath, path)
	t.Setenv("COVCHECK_LOG_LEVEL", "warn")
	t.Setenv("COVCHECK_CONNECTION_TIMEOUT", "5s")

	cfg, err := NewLoader().Load()

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Connection.Timeout)
}

func TestConfig_Snapshot(t *testing.T) {
	t.Setenv("COVCHECK_TEST_PASSWORD", "from-env")
	cfg := &Config{Instances: []InstanceConfig{
		{URL: " http://a.example.com "},
		{URL: "http://b.example.com", Username: "u", Password: "p"},
		{URL: "http://c.example.com", Username: "u", Password: "ignored", PasswordEnv: "COVCHECK_TEST_PASSWORD"},
	}}

	snap := cfg.Snapshot()

	require.Len(t, snap, 3)
	assert.Equal(t, coverity.Instance{URL: "http://a.example.com"}, snap[0])
	assert.Equal(t, &coverity.Credentials{Username: "u", Password: "p"}, snap[1].Credentials)
	assert.Equal(t, &coverity.Credentials{Username: "u", Password: "from-env"}, snap[2].Credentials)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "unsupported log level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "unsupported log format",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Connection.Timeout = 0 },
			wantErr: "connection timeout must be positive",
		},
		{
			name:    "negative ttl",
			mutate:  func(c *Config) { c.Cache.TTL = -time.Second },
			wantErr: "cache ttl cannot be negative",
		},
		{
			name: "empty instance url",
			mutate: func(c *Config) {
				c.Instances = []InstanceConfig{{URL: " "}}
			},
			wantErr: "instance 1: url cannot be empty",
		},
		{
			name: "duplicate instance url",
			mutate: func(c *Config) {
				c.Instances = []InstanceConfig{{URL: "http://a.example.com"}, {URL: "http://a.example.com/"}}
			},
			wantErr: "instance 2: duplicate url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_CacheDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Dir = "/tmp/covcheck-cache"

	dir, err := cfg.CacheDir()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/covcheck-cache", dir)
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Skip("no user config directory on this platform")
	}
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, "covcheck", filepath.Base(filepath.Dir(path)))
}
