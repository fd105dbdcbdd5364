package engine

// Component H: SLA Reaction (spec §4.H). On a violation warning, sheds
// VMs off the offending PM if it is genuinely overloaded.

// SLAWarning is delivered when a task's SLA is about to be missed. The
// simulator may interleave this with a TaskComplete for the same task at
// the same timestamp (spec §5); a violation for an already-completed
// task is ignored.
func (s *Scheduler) SLAWarning(now Time, taskID TaskId) {
	t := s.sim.GetTaskInfo(taskID)
	if t.Completion != 0 && t.Completion <= now {
		return
	}

	s.slaViolations[t.RequiredSLA]++

	vmID, ok := s.taskAssignments[taskID]
	if !ok {
		return
	}
	v := s.vms[vmID]
	if v == nil {
		return
	}
	m, ok := s.machines[v.host]
	if !ok {
		return
	}

	u := utilizationScore(m, s)
	if u <= s.cfg.SLAShedUtilThreshold {
		// Low utilisation: attributed to external causes (deep sleep wake
		// latency, MIPS mismatch); no action.
		return
	}

	s.shedFrom(m, u, now)
}

// shedFrom migrates VMs off m, stopping once m's utilisation falls below
// half its value at the start of shedding, or once every resident VM has
// been considered (spec §4.H).
func (s *Scheduler) shedFrom(m *machine, startUtil float64, now Time) {
	others := s.otherOnMachinesAscending(m.id)
	floor := startUtil / 2

	residents := m.residentList() // snapshot
	for _, vid := range residents {
		if utilizationScore(m, s) < floor {
			return
		}
		v := s.vms[vid]
		if v == nil {
			continue
		}
		dest := s.pickLightestCandidate(others, v.cpuType)
		if dest == nil {
			continue
		}
		s.beginMigration(v, dest.id)
	}
}

// otherOnMachinesAscending returns every ON PM other than exclude,
// sorted ascending by utilisation (spec §4.H step 1).
func (s *Scheduler) otherOnMachinesAscending(exclude PMId) []*machine {
	all := s.onMachinesSorted(s)
	out := make([]*machine, 0, len(all))
	for _, m := range all {
		if m.id != exclude {
			out = append(out, m)
		}
	}
	return out
}

// pickLightestCandidate scans others (already ascending by utilisation)
// and returns the first PM with a matching CPU type (spec §4.H: shed
// onto the lightest available PMs).
func (s *Scheduler) pickLightestCandidate(others []*machine, cpuType CPUType) *machine {
	for _, cand := range others {
		if cand.cpuType == cpuType {
			return cand
		}
	}
	return nil
}
