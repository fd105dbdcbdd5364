package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/energysched/energysched/internal/engine"
	"github.com/energysched/energysched/internal/simhost"
)

// TestPublisher_NilClientIsNoOp verifies the testable property of
// SPEC_FULL.md §8: a Publisher with no Redis client configured never
// panics and never blocks its caller, since disabling telemetry must be
// safe by construction.
func TestPublisher_NilClientIsNoOp(t *testing.T) {
	p := NewPublisher(nil, "energysched:snapshots", nil)
	require.NotPanics(t, func() {
		p.Publish(simhost.Snapshot{
			Time:           100,
			MachinesOn:     3,
			MachinesTotal:  5,
			SLAMetFraction: map[engine.SLAClass]float64{engine.SLA0: 0.95},
		})
	})
	require.NoError(t, p.Close())
}

// TestPublisher_NilReceiverIsNoOp verifies Publish and Close tolerate a
// nil *Publisher, so a caller that skipped telemetry construction
// entirely can still call through the interface unconditionally.
func TestPublisher_NilReceiverIsNoOp(t *testing.T) {
	var p *Publisher
	require.NotPanics(t, func() { p.Publish(simhost.Snapshot{}) })
	require.NoError(t, p.Close())
}
