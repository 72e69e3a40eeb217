package config

import (
	_ "embed"
	"fmt"

	"github.com/bebsworthy/devbench/pkg/config"
)

//go:embed defaults/devbench.json
var defaultConfigJSON []byte

// DefaultConfig returns the built-in configuration: the GHC dev shells of the
// IOG devx flake and its static-closure fork, timed with nix develop.
func DefaultConfig() *config.Config {
	cfg, err := config.LoadConfig(defaultConfigJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return cfg
}

// DefaultConfigJSON returns the embedded default configuration file
func DefaultConfigJSON() []byte {
	out := make([]byte, len(defaultConfigJSON))
	copy(out, defaultConfigJSON)
	return out
}
