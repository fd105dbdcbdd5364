// Package telemetry publishes periodic cluster snapshots to Redis
// pub/sub as an out-of-core sidecar (SPEC_FULL.md §4.K): the core and
// simulation host never await a publish, so a slow or unreachable Redis
// can never perturb simulated time.
package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/energysched/energysched/internal/engine"
	"github.com/energysched/energysched/internal/simhost"
)

// wireSnapshot is the JSON shape published on the channel; a copy of
// simhost.Snapshot with string-keyed SLA fractions since JSON object
// keys must be strings.
type wireSnapshot struct {
	RunID           string             `json:"run_id"`
	Time            engine.Time        `json:"time"`
	MachinesOn      int                `json:"machines_on"`
	MachinesTotal   int                `json:"machines_total"`
	VMCount         int                `json:"vm_count"`
	TaskCount       int                `json:"task_count"`
	ClusterEnergyWs float64            `json:"cluster_energy_ws"`
	SLAMetFraction  map[string]float64 `json:"sla_met_fraction"`
}

// Publisher publishes simhost.Snapshot values to a Redis channel,
// grounded on the pack's redis/go-redis/v9 usage: every call is
// fire-and-forget, bounded by p.timeout, and logs rather than propagates
// failures (REDESIGN FLAGS: telemetry must never block or fail a run).
type Publisher struct {
	client  *redis.Client
	channel string
	runID   string
	timeout time.Duration
	log     *logrus.Entry
}

// NewPublisher constructs a Publisher over an already-configured redis
// client. Pass nil client to get a Publisher whose Publish is a no-op,
// used when telemetry is disabled.
func NewPublisher(client *redis.Client, channel string, log *logrus.Entry) *Publisher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Publisher{
		client:  client,
		channel: channel,
		runID:   NewRunID(),
		timeout: 2 * time.Second,
		log:     log.WithField("component", "telemetry"),
	}
}

// RunID returns the correlation id stamped on every published snapshot.
func (p *Publisher) RunID() string { return p.runID }

// Publish serializes snap and fires it at the configured Redis channel
// in a detached goroutine bounded by p.timeout. It never blocks the
// caller and never returns an error: a lost snapshot only degrades
// observability, never the simulation itself.
func (p *Publisher) Publish(snap simhost.Snapshot) {
	if p == nil || p.client == nil {
		return
	}

	sla := make(map[string]float64, len(snap.SLAMetFraction))
	for class, frac := range snap.SLAMetFraction {
		sla[class.String()] = frac
	}
	wire := wireSnapshot{
		RunID:           p.runID,
		Time:            snap.Time,
		MachinesOn:      snap.MachinesOn,
		MachinesTotal:   snap.MachinesTotal,
		VMCount:         snap.VMCount,
		TaskCount:       snap.TaskCount,
		ClusterEnergyWs: snap.ClusterEnergyWs,
		SLAMetFraction:  sla,
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		p.log.WithError(err).Warn("marshaling snapshot")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
			p.log.WithError(err).Warn("publishing snapshot")
		}
	}()
}

// Close releases the underlying Redis client, if any.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
