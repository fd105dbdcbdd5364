package simhost

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/energysched/energysched/internal/engine"
)

// TestEventHeap_Ordering verifies the same three-key ordering the
// teacher's cluster_event_test.go exercises: events pop out ordered by
// (timestamp, type priority, event id), regardless of push order.
func TestEventHeap_Ordering(t *testing.T) {
	h := &EventHeap{}
	heap.Init(h)

	heap.Push(h, newPeriodicCheckEvent(100))     // priority 7
	heap.Push(h, newStateChangeCompleteEvent(100, 0)) // priority 1
	heap.Push(h, newMigrationDoneEvent(100, 0))  // priority 2
	heap.Push(h, newNewTaskEvent(50))
	heap.Push(h, newSimulationCompleteEvent(100))

	var order []engine.Time
	var types []EventType
	for h.Len() > 0 {
		e := heap.Pop(h).(Event)
		order = append(order, e.Timestamp())
		types = append(types, e.Type())
	}

	require.Equal(t, []engine.Time{50, 100, 100, 100, 100}, order)
	require.Equal(t, []EventType{
		EventNewTask,
		EventStateChangeComplete,
		EventMigrationDone,
		EventPeriodicCheck,
		EventSimulationComplete,
	}, types)
}

// TestEventHeap_SameTimestampAndPriorityBreaksOnEventID verifies the
// final tie-break: two events of the same type at the same timestamp pop
// in the order they were created.
func TestEventHeap_SameTimestampAndPriorityBreaksOnEventID(t *testing.T) {
	h := &EventHeap{}
	heap.Init(h)

	first := newMemoryWarningEvent(10, 1)
	second := newMemoryWarningEvent(10, 2)
	heap.Push(h, second)
	heap.Push(h, first)

	got := heap.Pop(h).(*memoryWarningEvent)
	require.Equal(t, first.EventID(), got.EventID())
}
