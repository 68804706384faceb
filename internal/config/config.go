// Package config loads runtime configuration from .ripple.yaml, RIPPLE_*
// environment variables, and CLI flags, in increasing precedence.
package config

import "github.com/spf13/viper"

// Config holds all runtime configuration for a ripple run.
type Config struct {
	// Extensions lists the file extensions (without dots) whose changes
	// count as source-relevant.
	Extensions []string `mapstructure:"extensions"`
	// Templates overrides the built-in command template per subcommand,
	// keyed by subcommand name (test, nextest, build, bench).
	Templates map[string]string `mapstructure:"templates"`
	Verbose   bool              `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for
// any values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("extensions", []string{"rs", "c", "cpp", "h", "hpp", "cc", "cxx", "toml"})
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// Template returns the configured template override for a subcommand, or
// fallback when none is set.
func (c Config) Template(name, fallback string) string {
	if t, ok := c.Templates[name]; ok && t != "" {
		return t
	}
	return fallback
}
