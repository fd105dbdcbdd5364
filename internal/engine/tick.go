package engine

// Component I: Tick Driver (spec §4.I, called periodically by the
// simulator). Invokes the overload check and the REDESIGN-FLAG-1
// per-core performance tuning; telemetry/progress hooks are the
// caller's concern (SPEC_FULL.md §4.K), not the core's.

// PeriodicCheck is delivered on every simulator tick.
func (s *Scheduler) PeriodicCheck(now Time) {
	s.overloadCheck(now)
	s.tunePerformanceStates(now)
}

// overloadCheck raises MinPMFractionOn and pre-wakes additional OFF PMs
// once the cluster looks overloaded: cluster-wide core_fill > threshold,
// OR mean tasks_per_vm > threshold AND off-ratio < threshold (spec
// §4.I).
func (s *Scheduler) overloadCheck(now Time) {
	if s.totalPMs == 0 {
		return
	}

	var totalCoreFill, totalTasks float64
	var totalVMs, onCount int
	for _, m := range s.machines {
		totalCoreFill += coreFill(m)
		if m.phase == PhaseON {
			onCount++
		}
	}
	for _, v := range s.vms {
		totalVMs++
		totalTasks += float64(v.taskCount())
	}

	meanCoreFill := totalCoreFill / float64(s.totalPMs)
	offRatio := 1 - float64(onCount)/float64(s.totalPMs)

	var meanTasksPerVM float64
	if totalVMs > 0 {
		meanTasksPerVM = totalTasks / float64(totalVMs)
	}

	overloaded := meanCoreFill > s.cfg.OverloadCoreFillThreshold ||
		(meanTasksPerVM > s.cfg.OverloadTasksPerVMThreshold && offRatio < s.cfg.OverloadOffRatioThreshold)
	if !overloaded {
		return
	}

	raised := s.cfg.MinPMFractionOn + 0.1
	if raised > 1 {
		raised = 1
	}
	s.cfg.MinPMFractionOn = raised

	// onCount only rises on StateChangeComplete(S0), so it stays fixed for
	// the rest of this tick no matter how many PMs we wake here. Track
	// effectiveOn locally (ON plus already-waking PMs) so the loop stops
	// at target instead of waking every OFF PM.
	effectiveOn := 0
	for _, m := range s.machines {
		if m.phase == PhaseON || m.phase == PhaseTurningOn {
			effectiveOn++
		}
	}

	target := int(raised * float64(s.totalPMs))
	if effectiveOn >= target {
		return
	}
	for _, m := range s.allMachinesSorted() {
		if effectiveOn >= target {
			break
		}
		if m.phase == PhaseOff {
			s.wake(m, now)
			effectiveOn++
		}
	}
}

// tunePerformanceStates implements REDESIGN FLAG 1 (SPEC_FULL.md): a PM
// below DownclockUtilThreshold drops one P-state; a PM above
// UpclockUtilThreshold returns to P0. Bucketed rather than binary, to
// avoid boundary thrash.
func (s *Scheduler) tunePerformanceStates(now Time) {
	_ = now
	for _, m := range s.allMachinesSorted() {
		if m.phase != PhaseON {
			continue
		}
		u := utilizationScore(m, s)
		switch {
		case u < s.cfg.DownclockUtilThreshold && m.pstate < P3:
			m.pstate++
			s.setAllCores(m, m.pstate)
		case u > s.cfg.UpclockUtilThreshold && m.pstate > P0:
			m.pstate = P0
			s.setAllCores(m, m.pstate)
		}
	}
}

// setAllCores applies p to every core of m, since spec §4's PM model
// tracks p-state cluster-uniformly per machine even though the outbound
// command is per-core (spec §6).
func (s *Scheduler) setAllCores(m *machine, p PState) {
	for core := 0; core < m.numCores; core++ {
		s.sim.MachineSetCorePerformance(m.id, core, p)
	}
}
