package simhost

import "container/heap"

// EventHeap is a min-heap of Events ordered by (timestamp, type priority,
// event id), the same three-key tie-break sim/cluster/event_heap.go uses
// to keep a reactor's processing order deterministic across runs.
type EventHeap []Event

func (h EventHeap) Len() int { return len(h) }

func (h EventHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.Timestamp() != b.Timestamp() {
		return a.Timestamp() < b.Timestamp()
	}
	pa, pb := eventTypePriority[a.Type()], eventTypePriority[b.Type()]
	if pa != pb {
		return pa < pb
	}
	return a.EventID() < b.EventID()
}

func (h EventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *EventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *EventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// schedule pushes e onto the heap via container/heap, preserving the
// heap invariant.
func (s *Simulator) schedule(e Event) {
	heap.Push(&s.heap, e)
}

// next pops the earliest-ordered event, or nil if the heap is empty.
func (s *Simulator) next() Event {
	if s.heap.Len() == 0 {
		return nil
	}
	return heap.Pop(&s.heap).(Event)
}
