package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	appName = "covcheck"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "COVCHECK"

	// EnvConfigPath names the variable pointing at an explicit config file.
	EnvConfigPath = EnvPrefix + "_CONFIG_PATH"

	configFileName = "config.yaml"
	localFileName  = "covcheck.yaml"
)

// Loader handles Viper-based configuration loading.
//
// Each Loader owns its own Viper instance, so loaders never share state.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new [Loader].
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load reads configuration following the documented priority order and
// returns a validated [Config]. Missing files are not an error; defaults
// apply.
func (l *Loader) Load() (*Config, error) {
	l.prepare()

	path, err := l.findConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := l.read(path); err != nil {
			return nil, err
		}
	}
	return l.unmarshal()
}

// LoadFromFile reads configuration from path, with environment overrides
// still applied.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.prepare()
	if err := l.read(path); err != nil {
		return nil, err
	}
	return l.unmarshal()
}

// MustLoad is like [Loader.Load] but panics on error.
func (l *Loader) MustLoad() *Config {
	cfg, err := l.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (l *Loader) prepare() {
	d := DefaultConfig()
	l.v.SetDefault("connection.timeout", d.Connection.Timeout)
	l.v.SetDefault("cache.enabled", d.Cache.Enabled)
	l.v.SetDefault("cache.dir", d.Cache.Dir)
	l.v.SetDefault("cache.ttl", d.Cache.TTL)
	l.v.SetDefault("log.level", d.Log.Level)
	l.v.SetDefault("log.format", d.Log.Format)
	l.v.SetDefault("output.quiet", d.Output.Quiet)
	l.v.SetDefault("server.listen", d.Server.Listen)

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

func (l *Loader) findConfigFile() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}

	candidates := []string{localFileName}
	if p, err := DefaultConfigPath(); err == nil {
		candidates = append([]string{p}, candidates...)
	}
	for _, p := range candidates {
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("checking config file %s: %w", p, err)
		}
	}
	return "", nil
}

func (l *Loader) read(path string) error {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := DefaultConfig()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ConfigDir returns the platform-standard covcheck configuration directory.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// DefaultConfigPath returns the config file path inside [ConfigDir].
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// EnsureConfigDir creates [ConfigDir] if it does not exist and returns it.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}
