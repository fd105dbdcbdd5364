package engine

import "fmt"

// ErrNoCompatibleMachine is fatal (spec §7): no PM of the required CPU
// type exists anywhere in the cluster.
type ErrNoCompatibleMachine struct {
	Task    TaskId
	CPUType CPUType
}

func (e *ErrNoCompatibleMachine) Error() string {
	return fmt.Sprintf("no compatible machine for task %d (requires cpu type %q)", e.Task, e.CPUType)
}

// ErrInvariantViolation is fatal in debug builds (spec §7): one of the
// invariants in spec §3 failed to hold between handler invocations.
type ErrInvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *ErrInvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated (%s): %s", e.Invariant, e.Detail)
}

// MemoryOvercommitWarning and SLAMissedWarning are never fatal (spec §7);
// they are recorded for bookkeeping and, for SLA, drive §4.H's reaction.
type MemoryOvercommitWarning struct {
	PM PMId
}

func (w *MemoryOvercommitWarning) Error() string {
	return fmt.Sprintf("memory overcommit on pm %d", w.PM)
}

type SLAMissedWarning struct {
	Task TaskId
	SLA  SLAClass
}

func (w *SLAMissedWarning) Error() string {
	return fmt.Sprintf("sla %s missed for task %d", w.SLA, w.Task)
}
