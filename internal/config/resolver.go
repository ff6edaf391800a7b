package config

import (
	"os"

	"github.com/xymatic/modinit/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is a configuration value together with its provenance.
type ResolvedValue struct {
	// Key is the configuration key, e.g. "templates".
	Key string
	// Value is the winning value.
	Value string
	// Source indicates where the value came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveOptions contains the candidate values for one key.
type ResolveOptions struct {
	// Key is the configuration key being resolved.
	Key string
	// FlagValue is the flag value (empty if not set).
	FlagValue string
	// EnvVar is the environment variable consulted after the flag.
	EnvVar string
	// ConfigValue is the value from the config file (empty if not set).
	ConfigValue string
	// DefaultValue is used when nothing else is set.
	DefaultValue string
}

// Resolve resolves a string value using precedence:
// (1) flag, (2) environment, (3) config file, (4) default.
func Resolve(opts ResolveOptions) ResolvedValue {
	result := ResolvedValue{
		Key:      opts.Key,
		Shadowed: make(map[ConfigSource]string),
	}

	var envValue string
	if opts.EnvVar != "" {
		envValue = os.Getenv(opts.EnvVar)
	}

	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, opts.FlagValue},
		{SourceEnv, envValue},
		{SourceConfig, opts.ConfigValue},
		{SourceDefault, opts.DefaultValue},
	}

	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if result.Source == "" {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		// The loader folds env into config values; only report real overrides.
		if c.value != result.Value {
			result.Shadowed[c.source] = c.value
		}
	}

	return result
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) MODINIT_CONFIG env, (3) ~/.modinit/config.yaml default.
func ResolveConfigPath(flagValue string) (ResolvedValue, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolvedValue{}, err
	}

	return Resolve(ResolveOptions{
		Key:          "config",
		FlagValue:    flagValue,
		EnvVar:       "MODINIT_CONFIG",
		DefaultValue: paths.ConfigFile,
	}), nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
