package config

import "fmt"

func validateConfig(c *Config) error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	switch c.Storage.Driver {
	case "", "memory":
	default:
		return fmt.Errorf("config: unrecognized storage driver %q", c.Storage.Driver)
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.Listen == "" {
		c.Listen = ":3890"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
}
