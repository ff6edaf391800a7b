package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix for modinit configuration.
const envPrefix = "MODINIT"

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v    *viper.Viper
	used string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults make every key known to viper so AutomaticEnv applies on Unmarshal.
	defaults := DefaultConfig()
	v.SetDefault("user.name", defaults.User.Name)
	v.SetDefault("user.site", defaults.User.Site)
	v.SetDefault("user.email", defaults.User.Email)
	v.SetDefault("user.username", "")
	v.SetDefault("templates", "")
	v.SetDefault("strict", false)
	v.SetDefault("concurrency", defaults.Concurrency)
	_ = v.BindEnv("log.timestamps", "MODINIT_LOG_TIMESTAMPS")

	return &Loader{v: v}
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// Environment variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")

	// A missing config file is fine: defaults and env vars still apply.
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file %s: %w", expandedPath, err)
		}
	} else {
		l.used = expandedPath
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration and applies computed defaults.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}

	return cfg.WithDefaults(), nil
}

// ConfigFileUsed returns the config file viper read, or "" if none.
func (l *Loader) ConfigFileUsed() string {
	return l.used
}
