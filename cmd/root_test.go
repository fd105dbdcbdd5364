package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRunSimulation_RejectsBadLogLevel verifies the flag-parsing guard
// fires before any config loading or simulation work starts.
func TestRunSimulation_RejectsBadLogLevel(t *testing.T) {
	prevLevel := logLevel
	defer func() { logLevel = prevLevel }()

	logLevel = "not-a-level"
	err := runSimulation(rootCmd, nil)
	require.Error(t, err)
}

// TestRootCmd_RegistersExpectedFlags verifies every flag cmd/root.go
// documents in its help text is actually wired to the command.
func TestRootCmd_RegistersExpectedFlags(t *testing.T) {
	for _, name := range []string{"config", "log-level", "horizon", "seed", "redis-addr", "redis-channel", "debug-invariants"} {
		require.NotNil(t, rootCmd.Flags().Lookup(name), "flag %q must be registered", name)
	}
}
