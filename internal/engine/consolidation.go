package engine

// Component D: Completion + Consolidation (spec §4.D). TaskComplete
// retires the completed task's VM if appropriate, then sweeps
// under-utilised PMs, migrating their VMs onto denser PMs and putting
// emptied PMs to sleep where the invariants allow it.

// TaskComplete is delivered when a task's instruction count reaches
// zero. The simulator guarantees it is never delivered twice for the
// same task.
func (s *Scheduler) TaskComplete(now Time, taskID TaskId) {
	vmID, ok := s.taskAssignments[taskID]
	if !ok {
		s.log.Warnf("TaskComplete: task %d has no assignment", taskID)
		return
	}
	v := s.vms[vmID]

	t := s.sim.GetTaskInfo(taskID)
	delete(s.taskAssignments, taskID)
	if v != nil {
		delete(v.tasks, taskID)
	}
	s.completedTasks++
	s.completedBySLA[t.RequiredSLA]++

	// Guard: never shut down a VM present in the in-flight table (spec
	// §4.E, invariant 3).
	if v != nil {
		if _, migrating := s.inFlight[vmID]; !migrating && v.taskCount() == 0 {
			s.shutdownVM(v)
		}
	}

	s.consolidate(now)
}

// consolidate implements spec §4.D steps 4-5.
func (s *Scheduler) consolidate(now Time) {
	sorted := s.onMachinesSorted(s)

	for _, src := range sorted {
		if utilizationScore(src, s) >= s.cfg.ConsolidationUtilThreshold {
			break // stop at first one above threshold (ascending order)
		}
		s.consolidateFrom(src, sorted, now)
	}
}

// consolidateFrom attempts to empty src by migrating each of its
// resident VMs onto a denser candidate PM, then puts src to sleep if it
// ends up empty and the invariants allow it.
func (s *Scheduler) consolidateFrom(src *machine, sorted []*machine, now Time) {
	residents := src.residentList() // snapshot (spec §9 iterator hazard)

	allMigrated := true
	for _, vid := range residents {
		v := s.vms[vid]
		if v == nil {
			continue
		}
		dest := s.pickDenserCandidate(src, sorted, v.cpuType)
		if dest == nil {
			allMigrated = false
			continue
		}
		s.beginMigration(v, dest.id)
	}

	if !allMigrated || len(src.residents) != 0 {
		return
	}
	if src.phase != PhaseON {
		return
	}
	if s.isMigrationTarget(src.id) {
		return
	}
	minOn := int(s.cfg.MinPMFractionOn * float64(s.totalPMs))
	if s.onCount <= minOn {
		return
	}
	s.beginSleep(src, s.cfg.SleepState, now)
}

// pickDenserCandidate scans sorted (ascending utilisation) from the
// highest-utilised end and returns the first PM other than src with a
// matching CPU type (spec §4.D: migrate onto denser PMs).
func (s *Scheduler) pickDenserCandidate(src *machine, sorted []*machine, cpuType CPUType) *machine {
	for i := len(sorted) - 1; i >= 0; i-- {
		cand := sorted[i]
		if cand.id == src.id || cand.phase != PhaseON {
			continue
		}
		if cand.cpuType != cpuType {
			continue
		}
		return cand
	}
	return nil
}

// isMigrationTarget reports whether pm appears as a value in the
// in-flight migration table (spec invariant 2).
func (s *Scheduler) isMigrationTarget(pm PMId) bool {
	for _, target := range s.inFlight {
		if target == pm {
			return true
		}
	}
	return false
}
