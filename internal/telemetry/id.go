package telemetry

import "github.com/google/uuid"

// NewRunID mints a run correlation id, published on every snapshot so a
// subscriber can distinguish concurrent runs on the same channel.
func NewRunID() string {
	return uuid.NewString()
}
