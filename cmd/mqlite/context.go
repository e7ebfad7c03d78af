package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mqlite/internal/config"
	"mqlite/internal/logging"
	"mqlite/internal/metrics"
	"mqlite/internal/queue"
)

type commandContext struct {
	configFlag *string
	storeFlag  *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, storeFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		storeFlag:  storeFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.storeFlag != nil {
			if override := strings.TrimSpace(*c.storeFlag); override != "" {
				if cfg.Store.Path, err = expandStorePath(override); err != nil {
					c.configErr = err
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func expandStorePath(path string) (string, error) {
	if path == queue.MemoryPath {
		return path, nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve store path: %w", err)
	}
	return expanded, nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withStore opens the configured store for the duration of fn. When metrics
// are enabled with a textfile target the collected counters are written after
// the store closes.
func (c *commandContext) withStore(ctx context.Context, fn func(*queue.Store) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}

	var (
		opts     []queue.Option
		registry *prometheus.Registry
	)
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		collectors, err := metrics.New(registry)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, queue.WithMetrics(collectors))
	}

	store, err := queue.NewFromConfig(cfg, logger, opts...)
	if err != nil {
		return err
	}
	if err := store.Listen(ctx); err != nil {
		return describeStoreError(cfg, err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close store: %w", closeErr)
		}
		if registry != nil && cfg.Metrics.Textfile != "" {
			if writeErr := prometheus.WriteToTextfile(cfg.Metrics.Textfile, registry); writeErr != nil {
				logger.Warn("metrics textfile not written",
					logging.String("path", cfg.Metrics.Textfile),
					logging.Error(writeErr),
				)
			}
		}
	}()

	return fn(store)
}

func describeStoreError(cfg *config.Config, err error) error {
	switch {
	case errors.Is(err, queue.ErrStoreLocked):
		return fmt.Errorf("open store: %s is in use by another mqlite process: %w", cfg.Store.Path, err)
	case errors.Is(err, queue.ErrSchemaMismatch):
		return fmt.Errorf("open store: %s was created by an incompatible version: %w", cfg.Store.Path, err)
	default:
		return fmt.Errorf("open store: %w", err)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
