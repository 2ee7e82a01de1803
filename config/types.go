package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
	Update  UpdateConfig  `mapstructure:"update"`
}

// APIConfig holds PostUp API connection details
type APIConfig struct {
	URL               string        `mapstructure:"url"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	StatusPassthrough bool          `mapstructure:"status_passthrough"`
	Metrics           bool          `mapstructure:"metrics"`
}

// FilterConfig contains named filter presets and the default expression
type FilterConfig struct {
	DefaultExpression string                  `mapstructure:"default"`
	Presets           map[string]PresetConfig `mapstructure:"presets"`
}

// PresetConfig is a saved filter expression
type PresetConfig struct {
	Expression  string `mapstructure:"expression"`
	Description string `mapstructure:"description"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// UpdateConfig controls where self-update looks for releases
type UpdateConfig struct {
	Repository string `mapstructure:"repository"`
}
