package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	switch c.Store.Mode {
	case "queue", "feed":
	default:
		return fmt.Errorf("store.mode must be \"queue\" or \"feed\", got %q", c.Store.Mode)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must be set (use %q for an in-memory store)", memoryStorePath)
	}
	if c.Store.BusyTimeoutMS <= 0 {
		return errors.New("store.busy_timeout_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
