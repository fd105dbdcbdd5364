package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDefaultRunConfig_IsValid verifies the zero-argument configuration
// a run falls back to satisfies engine.EngineConfig.Validate, so a run
// started with no file and no environment overrides never fails at
// startup on a config error.
func TestDefaultRunConfig_IsValid(t *testing.T) {
	cfg := DefaultRunConfig()
	require.NoError(t, cfg.Engine.Validate())
	require.NotEmpty(t, cfg.SimHost.Topology.Machines)
}

// TestLoad_MissingExplicitFileErrors verifies that Load with an
// explicitly named but nonexistent config path returns an error and no
// configuration; only Load("") falls back to the built-in defaults.
func TestLoad_MissingExplicitFileErrors(t *testing.T) {
	cfg, err := Load("/nonexistent/path/energysched.yaml")
	require.Error(t, err, "an explicitly named but missing config file should still error")
	require.Nil(t, cfg)
}

// TestLoad_NoPathUsesDefaults verifies that Load("") — no explicit file
// — never errors even when no energysched.yaml exists on the search
// path, and returns a valid configuration.
func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Engine.Validate())
}
