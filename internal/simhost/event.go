// Package simhost is a reference implementation of the discrete-event
// simulator that spec.md §1 treats as an external collaborator: it owns
// the physical PM/VM/Task model, drives engine.Scheduler through the
// spec §6 event/command boundary, and is itself intentionally swappable
// — any driver satisfying engine.Simulator can host engine.Scheduler
// instead.
package simhost

import (
	"sync/atomic"

	"github.com/energysched/energysched/internal/engine"
)

// EventType enumerates the inbound events of spec §6, plus Init/
// SimulationComplete which bookend a run.
type EventType int

const (
	EventInit EventType = iota
	EventNewTask
	EventTaskComplete
	EventMigrationDone
	EventStateChangeComplete
	EventMemoryWarning
	EventSLAWarning
	EventPeriodicCheck
	EventSimulationComplete
)

// eventTypePriority orders simultaneous events deterministically (spec
// §5): lower values are processed first. Grounded on
// sim/cluster/types.go's EventTypePriority map.
var eventTypePriority = map[EventType]int{
	EventInit:                0,
	EventStateChangeComplete: 1,
	EventMigrationDone:       2,
	EventTaskComplete:        3,
	EventSLAWarning:          4,
	EventMemoryWarning:       5,
	EventNewTask:             6,
	EventPeriodicCheck:       7,
	EventSimulationComplete:  8,
}

// Event is a scheduled simulation event (grounded on
// sim/cluster/events.go's Event interface).
type Event interface {
	Timestamp() engine.Time
	EventID() uint64
	Type() EventType
	Execute(sim *Simulator)
}

var globalEventID uint64

// BaseEvent provides the fields common to every event.
type BaseEvent struct {
	timestamp engine.Time
	eventID   uint64
	eventType EventType
}

func newBaseEvent(ts engine.Time, t EventType) BaseEvent {
	return BaseEvent{
		timestamp: ts,
		eventID:   atomic.AddUint64(&globalEventID, 1),
		eventType: t,
	}
}

func (e *BaseEvent) Timestamp() engine.Time { return e.timestamp }
func (e *BaseEvent) EventID() uint64        { return e.eventID }
func (e *BaseEvent) Type() EventType        { return e.eventType }

type initEvent struct{ BaseEvent }

func newInitEvent(ts engine.Time) *initEvent {
	return &initEvent{newBaseEvent(ts, EventInit)}
}
func (e *initEvent) Execute(sim *Simulator) { sim.handleInit(e) }

// newTaskEvent marks a workload arrival; the task itself is materialized
// by handleNewTask at execution time, not at scheduling time, so no id
// is carried on the event.
type newTaskEvent struct{ BaseEvent }

func newNewTaskEvent(ts engine.Time) *newTaskEvent {
	return &newTaskEvent{newBaseEvent(ts, EventNewTask)}
}
func (e *newTaskEvent) Execute(sim *Simulator) { sim.handleNewTask(e) }

type taskCompleteEvent struct {
	BaseEvent
	taskID engine.TaskId
}

func newTaskCompleteEvent(ts engine.Time, taskID engine.TaskId) *taskCompleteEvent {
	return &taskCompleteEvent{BaseEvent: newBaseEvent(ts, EventTaskComplete), taskID: taskID}
}
func (e *taskCompleteEvent) Execute(sim *Simulator) { sim.handleTaskComplete(e) }

type migrationDoneEvent struct {
	BaseEvent
	vmID engine.VMId
}

func newMigrationDoneEvent(ts engine.Time, vmID engine.VMId) *migrationDoneEvent {
	return &migrationDoneEvent{BaseEvent: newBaseEvent(ts, EventMigrationDone), vmID: vmID}
}
func (e *migrationDoneEvent) Execute(sim *Simulator) { sim.handleMigrationDone(e) }

type stateChangeCompleteEvent struct {
	BaseEvent
	pmID engine.PMId
}

func newStateChangeCompleteEvent(ts engine.Time, pmID engine.PMId) *stateChangeCompleteEvent {
	return &stateChangeCompleteEvent{BaseEvent: newBaseEvent(ts, EventStateChangeComplete), pmID: pmID}
}
func (e *stateChangeCompleteEvent) Execute(sim *Simulator) { sim.handleStateChangeComplete(e) }

type memoryWarningEvent struct {
	BaseEvent
	pmID engine.PMId
}

func newMemoryWarningEvent(ts engine.Time, pmID engine.PMId) *memoryWarningEvent {
	return &memoryWarningEvent{BaseEvent: newBaseEvent(ts, EventMemoryWarning), pmID: pmID}
}
func (e *memoryWarningEvent) Execute(sim *Simulator) { sim.handleMemoryWarning(e) }

type slaWarningEvent struct {
	BaseEvent
	taskID engine.TaskId
}

func newSLAWarningEvent(ts engine.Time, taskID engine.TaskId) *slaWarningEvent {
	return &slaWarningEvent{BaseEvent: newBaseEvent(ts, EventSLAWarning), taskID: taskID}
}
func (e *slaWarningEvent) Execute(sim *Simulator) { sim.handleSLAWarning(e) }

type periodicCheckEvent struct{ BaseEvent }

func newPeriodicCheckEvent(ts engine.Time) *periodicCheckEvent {
	return &periodicCheckEvent{newBaseEvent(ts, EventPeriodicCheck)}
}
func (e *periodicCheckEvent) Execute(sim *Simulator) { sim.handlePeriodicCheck(e) }

type simulationCompleteEvent struct{ BaseEvent }

func newSimulationCompleteEvent(ts engine.Time) *simulationCompleteEvent {
	return &simulationCompleteEvent{newBaseEvent(ts, EventSimulationComplete)}
}
func (e *simulationCompleteEvent) Execute(sim *Simulator) { sim.handleSimulationComplete(e) }
