package engine

import "sort"

// Component F: Power-State Controller (spec §4.F). Sleep tiers form the
// ladder S0 < S0i1 < S1 < S2 < S3 < S4 < S5. The controller commands
// transitions; the simulator delivers completion asynchronously.

// isStandbyTier decides whether reaching sstate should be reported as
// phase STANDBY (a light, quickly-resumable tier) rather than OFF (a
// deep tier). S0i1 and S1 are light enough to standby; S2 and deeper are
// treated as full OFF. This resolves spec §4.F's "the configured STANDBY
// tier" for a config that allows any of the five named tiers to be
// chosen for sleep_state.
func isStandbyTier(s SState) bool {
	return s == S0i1 || s == S1
}

// beginSleep issues Machine_SetState(m, sstate), sets phase =
// TURNING_OFF, and decrements the ON count. Callers must have already
// verified m is a valid consolidation/power-down target (empty
// residents, not a migration target, ON-count headroom) per spec §4.D
// invariant 4.
func (s *Scheduler) beginSleep(m *machine, sstate SState, now Time) {
	s.sim.MachineSetState(m.id, sstate)
	if m.phase == PhaseON {
		s.onCount--
	}
	m.phase = PhaseTurningOff
	m.lastPhaseChange = now
}

// wake issues Machine_SetState(m, S0) and sets phase = TURNING_ON.
func (s *Scheduler) wake(m *machine, now Time) {
	s.sim.MachineSetState(m.id, S0)
	m.phase = PhaseTurningOn
	m.lastPhaseChange = now
}

// StateChangeComplete is delivered when a prior Machine_SetState has
// finished (spec §4.F, §6).
func (s *Scheduler) StateChangeComplete(now Time, pmID PMId) {
	m, ok := s.machines[pmID]
	if !ok {
		return
	}

	info := s.sim.MachineGetInfo(pmID)
	m.sstate = info.SState
	m.lastPhaseChange = now

	switch {
	case m.sstate == S0:
		m.phase = PhaseON
		s.onCount++
		s.drainPending(m, now)

	case isStandbyTier(m.sstate):
		m.phase = PhaseStandby
		if len(m.pending) > 0 {
			s.wake(m, now)
		}

	default:
		m.phase = PhaseOff
		if len(m.pending) > 0 {
			s.wake(m, now)
		}
	}
}

// realignSleepTier walks every OFF PM and re-issues a sleep-state command
// to align it with the Burst Detector's current chosen tier (spec §4.C
// step 1). PMs already transitioning or ON are left alone: a PM that's
// OFF is, by definition, idle and safe to re-command without disturbing
// residents or pending work.
func (s *Scheduler) realignSleepTier(now Time) {
	tier := s.burst.currentTier()
	for _, m := range s.allMachinesSorted() {
		if m.phase != PhaseOff || m.sstate == tier {
			continue
		}
		s.sim.MachineSetState(m.id, tier)
		m.phase = PhaseTurningOff
		m.lastPhaseChange = now
	}
}

// allMachinesSorted returns every PM in ascending id order.
func (s *Scheduler) allMachinesSorted() []*machine {
	out := make([]*machine, 0, len(s.machines))
	for _, m := range s.machines {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
