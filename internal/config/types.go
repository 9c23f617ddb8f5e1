// Package config provides configuration loading and management for covcheck.
//
// Configuration is loaded using Viper, supporting YAML config files and environment
// variable overrides. The package provides sensible defaults that work out of the
// box; only the list of Coverity instances has to be supplied.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [InstanceConfig] describes one Coverity Connect server and its credentials
//
// Configuration priority (highest to lowest):
//  1. Environment variables (COVCHECK_ prefix, e.g. COVCHECK_LOG_LEVEL)
//  2. Config file specified by COVCHECK_CONFIG_PATH
//  3. User config directory (platform-standard):
//     - Linux: ~/.config/covcheck/config.yaml
//     - macOS: ~/Library/Application Support/covcheck/config.yaml
//     - Windows: %APPDATA%\covcheck\config.yaml
//  4. ./covcheck.yaml
//  5. [DefaultConfig] defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"covcheck/internal/coverity"
	"covcheck/internal/logging"
)

// Config represents the root configuration structure.
//
// This is the main configuration container loaded by [Loader] and used throughout
// the application. Use [DefaultConfig] to get sensible defaults.
type Config struct {
	// Instances lists the Coverity Connect servers checks can run against.
	Instances []InstanceConfig `mapstructure:"instances"`

	// Connection contains transport settings.
	Connection ConnectionConfig `mapstructure:"connection"`

	// Cache contains view list cache settings.
	Cache CacheConfig `mapstructure:"cache"`

	// Log contains logger settings.
	Log LogConfig `mapstructure:"log"`

	// Output contains terminal output settings.
	Output OutputConfig `mapstructure:"output"`

	// Server contains HTTP API settings used by the serve command.
	Server ServerConfig `mapstructure:"server"`
}

// InstanceConfig is one configured Coverity Connect server.
//
// The URL is also the instance's display name. Credentials are optional;
// when set, both username and a password source must be given.
type InstanceConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// PasswordEnv names an environment variable holding the password.
	// It takes precedence over Password so secrets can stay out of files.
	PasswordEnv string `mapstructure:"password_env"`
}

// ConnectionConfig contains transport settings.
type ConnectionConfig struct {
	// Timeout bounds one request to a server, including connection tests.
	// Default: 30s
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig contains view list cache settings.
type CacheConfig struct {
	// Enabled controls whether view lists are cached on disk.
	// Default: true
	Enabled bool `mapstructure:"enabled"`

	// Dir is the cache root. Empty means the user cache directory.
	Dir string `mapstructure:"dir"`

	// TTL is how long a cached list is served before refetching.
	// Default: 15m
	TTL time.Duration `mapstructure:"ttl"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `mapstructure:"level"`

	// Format is console or json. Default: console
	Format string `mapstructure:"format"`
}

// OutputConfig contains terminal output settings.
type OutputConfig struct {
	// Quiet suppresses progress lines; results and errors are still printed.
	Quiet bool `mapstructure:"quiet"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	// Listen is the address the API binds to. Default: ":9010"
	Listen string `mapstructure:"listen"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
//
// No instances are configured by default.
func DefaultConfig() *Config {
	return &Config{
		Connection: ConnectionConfig{
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Listen: ":9010",
		},
	}
}

// Snapshot converts the configured instances into the read-only
// [coverity.Instances] handed to validators and checkers. Password
// environment variables are resolved at this point.
func (c *Config) Snapshot() coverity.Instances {
	out := make(coverity.Instances, 0, len(c.Instances))
	for _, ic := range c.Instances {
		inst := coverity.Instance{URL: strings.TrimSpace(ic.URL)}
		password := ic.Password
		if ic.PasswordEnv != "" {
			password = os.Getenv(ic.PasswordEnv)
		}
		if ic.Username != "" || password != "" {
			inst.Credentials = &coverity.Credentials{Username: ic.Username, Password: password}
		}
		out = append(out, inst)
	}
	return out
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	if c.Connection.Timeout <= 0 {
		return errors.New("connection timeout must be positive")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache ttl cannot be negative")
	}

	seen := make(map[string]bool, len(c.Instances))
	for i, ic := range c.Instances {
		u := strings.TrimSuffix(strings.TrimSpace(ic.URL), "/")
		if u == "" {
			return fmt.Errorf("instance %d: url cannot be empty", i+1)
		}
		if seen[u] {
			return fmt.Errorf("instance %d: duplicate url %q", i+1, ic.URL)
		}
		seen[u] = true
	}
	return nil
}

// CacheDir returns the directory the view cache lives in.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating user cache directory: %w", err)
	}
	return filepath.Join(base, appName), nil
}
