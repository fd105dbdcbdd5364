package engine

import "fmt"

// CheckInvariants re-validates the spec §3 invariants that must hold
// between handler invocations. It returns immediately unless
// EngineConfig.DebugInvariants is set (spec §7: "in debug builds"); a
// violation panics with a diagnostic dump rather than returning an
// error, since no caller in this single-threaded reactor is positioned
// to recover mid-handler (spec §5).
func (s *Scheduler) CheckInvariants() {
	if !s.cfg.DebugInvariants {
		return
	}
	if err := s.checkInvariants(); err != nil {
		panic(fmt.Sprintf("%v\n%s", err, s.DumpState()))
	}
}

func (s *Scheduler) checkInvariants() error {
	// Invariant 2: a VM that is a migration-table key is absent from
	// every PM's resident set (only this direction is checked).
	for vmID, target := range s.inFlight {
		for pmID, m := range s.machines {
			if m.residents[vmID] {
				return &ErrInvariantViolation{
					Invariant: "2",
					Detail:    fmt.Sprintf("vm %d is both in-flight to %d and resident on %d", vmID, target, pmID),
				}
			}
		}
	}

	// Invariant 5: pending queues are non-empty only for PMs whose phase
	// is TURNING_ON, STANDBY, or TURNING_OFF.
	for id, m := range s.machines {
		if len(m.pending) == 0 {
			continue
		}
		switch m.phase {
		case PhaseTurningOn, PhaseStandby, PhaseTurningOff:
		default:
			return &ErrInvariantViolation{
				Invariant: "5",
				Detail:    fmt.Sprintf("pm %d has pending tasks but phase is %s", id, m.phase),
			}
		}
	}

	// Invariant 3: a VM present in the in-flight table is never shut
	// down, which we can only check indirectly here: every in-flight key
	// must still exist in s.vms (a shutdown deletes the vms entry).
	for vmID := range s.inFlight {
		if _, ok := s.vms[vmID]; !ok {
			return &ErrInvariantViolation{
				Invariant: "3",
				Detail:    fmt.Sprintf("vm %d was removed while still in-flight", vmID),
			}
		}
	}

	// Invariant 1: every live task assignment points at a resident (or
	// in-flight) VM.
	for taskID, vmID := range s.taskAssignments {
		v, ok := s.vms[vmID]
		if !ok {
			return &ErrInvariantViolation{
				Invariant: "1",
				Detail:    fmt.Sprintf("task %d assigned to unknown vm %d", taskID, vmID),
			}
		}
		if _, ok := v.tasks[taskID]; !ok {
			return &ErrInvariantViolation{
				Invariant: "1",
				Detail:    fmt.Sprintf("task %d not found in its assigned vm %d's task set", taskID, vmID),
			}
		}
	}

	return nil
}

// DumpState renders a diagnostic summary of the cluster model for the
// fatal-error path of spec §7.
func (s *Scheduler) DumpState() string {
	out := fmt.Sprintf("cluster: %d pms, %d on, %d vms, %d in-flight, %d pending assignments\n",
		s.totalPMs, s.onCount, len(s.vms), len(s.inFlight), len(s.taskAssignments))
	for _, m := range s.allMachinesSorted() {
		out += fmt.Sprintf("  pm %d: phase=%s sstate=%s residents=%v pending=%v\n",
			m.id, m.phase, m.sstate, m.residentList(), m.pending)
	}
	return out
}
