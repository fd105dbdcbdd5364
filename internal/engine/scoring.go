package engine

// Component B: Machine Scoring (spec §4.B). Given a task and a candidate
// PM with matching CPU type, score computes a scalar where higher is
// better. Weights are tunable policy (EngineConfig.Weights), not
// protocol.

// phiPhase maps a PM's power phase to the scoring term of spec §4.B.
func phiPhase(p Phase) float64 {
	switch p {
	case PhaseON:
		return 1.0
	case PhaseTurningOn:
		return 0.7
	case PhaseOff:
		return 0.5
	case PhaseTurningOff:
		return 0.2
	case PhaseStandby:
		return 0.3
	default:
		return 0
	}
}

// phiSState maps a PM's sleep tier to the scoring term of spec §4.B.
func phiSState(s SState) float64 {
	switch s {
	case S0:
		return 1.0
	case S0i1:
		return 0.88
	case S1:
		return 0.8
	case S2:
		return 0.6
	case S3:
		return 0.4
	case S4:
		return 0.2
	case S5:
		return 0.1
	default:
		return 0
	}
}

// coreFill is active_vms / num_cpus, or 0 once the PM is saturated past
// its core count (spec §4.B).
func coreFill(m *machine) float64 {
	if m.numCores <= 0 {
		return 0
	}
	fill := float64(len(m.residents)) / float64(m.numCores)
	if fill > 1 {
		return 0
	}
	return fill
}

// memFreeFraction is 1 - mem_used_fraction, clamped to [0,1] (spec §4.B).
func (s *Scheduler) memFreeFraction(m *machine) float64 {
	free := 1 - s.memUsedFraction(m)
	if free < 0 {
		return 0
	}
	if free > 1 {
		return 1
	}
	return free
}

// priorityAffinity counts conflicting tasks already resident on m for a
// task of the given priority, and returns 1/(1+conflicts) (spec §4.B):
// HIGH tasks conflict with HIGH; MID conflicts with HIGH+MID; LOW
// conflicts with everything.
func (s *Scheduler) priorityAffinity(m *machine, priority Priority) float64 {
	conflicts := 0
	for vid := range m.residents {
		v := s.vms[vid]
		if v == nil {
			continue
		}
		for _, p := range v.tasks {
			switch priority {
			case HIGH:
				if p == HIGH {
					conflicts++
				}
			case MID:
				if p == HIGH || p == MID {
					conflicts++
				}
			default: // LOW
				conflicts++
			}
		}
	}
	return 1.0 / float64(1+conflicts)
}

// mipsNorm is M.performance[M.p_state] / MAX_MIPS, attenuated by
// (1 - core_fill(M)) for SLA1 tasks to bias toward less-loaded fast
// machines (spec §4.B).
func (s *Scheduler) mipsNorm(m *machine, t TaskInfo) float64 {
	if s.maxMIPS <= 0 || int(m.pstate) >= len(m.performance) {
		return 0
	}
	norm := m.performance[m.pstate] / s.maxMIPS
	if t.RequiredSLA == SLA1 {
		norm *= 1 - coreFill(m)
	}
	return norm
}

// recency is 1/(1+age_since_phase_change) if the PM is not ON, else 1
// (spec §4.B): an ON PM has no wake-latency penalty; a PM mid-transition
// is penalized the longer it's been since it started transitioning.
func recency(m *machine, now Time) float64 {
	if m.phase == PhaseON {
		return 1.0
	}
	age := now - m.lastPhaseChange
	if age < 0 {
		age = 0
	}
	return 1.0 / float64(1+age)
}

// score computes the weighted scalar of spec §4.B for task t on machine
// m at time now.
func (s *Scheduler) score(m *machine, t TaskInfo, now Time) float64 {
	w := s.cfg.Weights
	gpu := 0.0
	if m.hasGPU && t.GPUCapable {
		gpu = 1.0
	}
	return w.State*phiPhase(m.phase) +
		w.SState*phiSState(m.sstate) +
		w.Cores*coreFill(m) +
		w.Mem*s.memFreeFraction(m) +
		w.GPU*gpu +
		w.Priority*s.priorityAffinity(m, t.Priority) +
		w.MIPS*s.mipsNorm(m, t) +
		w.Time*recency(m, now) -
		w.Pending*float64(len(m.pending))
}

// rankMachines ranks every PM with matching CPU type and returns the
// maximum-scoring one, or nil if none exist. Ties break by lowest PM id
// (spec §8 S1), which machinesWithCPUType already guarantees by
// returning PMs in ascending id order and comparing with strict `>`.
func (s *Scheduler) rankMachines(t TaskInfo, now Time) *machine {
	candidates := s.machinesWithCPUType(t.RequiredCPUType)
	var best *machine
	var bestScore float64
	for _, m := range candidates {
		sc := s.score(m, t, now)
		if best == nil || sc > bestScore {
			best = m
			bestScore = sc
		}
	}
	return best
}
