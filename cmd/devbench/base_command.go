package main

import (
	"fmt"
	"time"

	"github.com/bebsworthy/devbench/internal/config"
	"github.com/bebsworthy/devbench/internal/executor"
	pkgconfig "github.com/bebsworthy/devbench/pkg/config"
)

// Replaced in tests
var (
	newExecutor = func() executor.Executor {
		return executor.NewCommandExecutor(0)
	}
	clock func() time.Time
)

// loadConfig loads the --config file, or discovers one, and reports where it came from
func loadConfig() (*pkgconfig.Config, string, error) {
	loader := config.NewLoader()

	var (
		cfg *pkgconfig.Config
		err error
	)
	if configPath != "" {
		cfg, err = loader.LoadFromPath(configPath)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, loader.Source(), nil
}
