// Package config provides configuration loading and management.
package config

import (
	"os/user"
)

// DefaultConcurrency is the number of template entries emitted in parallel.
const DefaultConcurrency = 8

// IdentityConfig describes the author written into generated files.
type IdentityConfig struct {
	// Name is the author's display name.
	// Env: MODINIT_USER_NAME
	Name string `mapstructure:"name" yaml:"name"`

	// Site is the author's homepage URL.
	// Env: MODINIT_USER_SITE
	Site string `mapstructure:"site" yaml:"site"`

	// Email is the author's contact address.
	// Env: MODINIT_USER_EMAIL
	Email string `mapstructure:"email" yaml:"email"`

	// Username is the author's account name on the code host.
	// Env: MODINIT_USER_USERNAME, Default: the OS login name
	Username string `mapstructure:"username" yaml:"username"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// Config represents the modinit configuration.
// Loaded from ~/.modinit/config.yaml with MODINIT_* environment overrides.
type Config struct {
	// User is the identity used for {{user.*}} placeholders.
	User IdentityConfig `mapstructure:"user" yaml:"user"`

	// Templates is a directory replacing the built-in template tree.
	// Env: MODINIT_TEMPLATES
	Templates string `mapstructure:"templates" yaml:"templates,omitempty"`

	// Strict makes unknown placeholders a fatal error instead of empty text.
	// Env: MODINIT_STRICT
	Strict bool `mapstructure:"strict" yaml:"strict"`

	// Concurrency bounds the number of entries emitted in parallel.
	// Env: MODINIT_CONCURRENCY
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	// Log contains logging-related settings.
	Log LogConfig `mapstructure:"log" yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return &Config{
		User: IdentityConfig{
			Name:  "xymatic",
			Site:  "http://delight-engine.com",
			Email: "connect@xymatic.com",
		},
		Concurrency: DefaultConcurrency,
	}
}

// WithDefaults fills unset fields that have computed defaults.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.User.Username == "" {
		out.User.Username = osUsername()
	}
	if out.Concurrency <= 0 {
		out.Concurrency = DefaultConcurrency
	}
	return &out
}

func osUsername() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
