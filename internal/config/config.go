package config

import "fmt"

// Config represents the application configuration
type Config struct {
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

// CacheConfig contains manifest store settings
type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// OutputConfig contains output settings
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "":
		c.Output.Format = DefaultOutputFormat
	case "json", "yaml":
	default:
		return fmt.Errorf("invalid output.format %q (use json or yaml)", c.Output.Format)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Cache.Directory == "" {
		c.Cache.Directory = CacheDir()
	}
	return nil
}
