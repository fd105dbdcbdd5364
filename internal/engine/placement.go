package engine

import "fmt"

// NewTask is Component C: the placement policy (spec §4.C). Selects a PM
// per Component B's ranking and routes to ON / wake / queue-pending.
func (s *Scheduler) NewTask(now Time, taskID TaskId) {
	if changed := s.burst.onArrival(now); changed {
		s.cfg.SleepState = s.burst.currentTier()
		s.realignSleepTier(now)
	}

	t := s.sim.GetTaskInfo(taskID)

	best := s.rankMachines(t, now)
	if best == nil {
		// Fatal per spec §7: no PM anywhere in the cluster can ever serve
		// this task's CPU type, so there is nothing to recover into.
		err := &ErrNoCompatibleMachine{Task: taskID, CPUType: t.RequiredCPUType}
		s.log.Errorf("NewTask: %v", err)
		panic(fmt.Sprintf("%v\n%s", err, s.DumpState()))
	}

	switch best.phase {
	case PhaseON:
		s.placeOnMachine(best, t, now)
	case PhaseOff:
		s.sim.MachineSetState(best.id, S0)
		best.phase = PhaseTurningOn
		best.lastPhaseChange = now
		best.pending = append(best.pending, taskID)
	case PhaseTurningOn:
		best.pending = append(best.pending, taskID)
	case PhaseTurningOff:
		// The completion of the sleep transition (§4.F) will observe a
		// non-empty pending queue and immediately re-wake.
		best.pending = append(best.pending, taskID)
	case PhaseStandby:
		// Not ON: treat like an OFF PM that must first be woken.
		s.sim.MachineSetState(best.id, S0)
		best.phase = PhaseTurningOn
		best.lastPhaseChange = now
		best.pending = append(best.pending, taskID)
	}
}

// placeOnMachine is the VM-selection subroutine of spec §4.C, given that
// m is ON.
func (s *Scheduler) placeOnMachine(m *machine, t TaskInfo, now Time) {
	var target *vm

	if len(m.residents) < m.numCores {
		target = s.createVM(m, t)
	} else {
		target = s.pickExistingVM(m, t)
		if target == nil {
			target = s.createVM(m, t)
		}
	}

	s.assignTask(target, t)
}

// createVM creates a fresh VM of the task's required type on m and
// attaches it.
func (s *Scheduler) createVM(m *machine, t TaskInfo) *vm {
	id := s.sim.VMCreate(t.RequiredVMType, t.RequiredCPUType)
	s.sim.VMAttach(id, m.id)
	v := &vm{
		id:      id,
		vmType:  t.RequiredVMType,
		cpuType: t.RequiredCPUType,
		host:    m.id,
		tasks:   make(map[TaskId]Priority),
	}
	s.vms[id] = v
	m.addResident(id)
	return v
}

// pickExistingVM picks the resident VM of matching vm_type that
// minimises the priority-affinity conflict count, tie-broken by fewest
// total tasks (spec §4.C). Returns nil if none exists.
func (s *Scheduler) pickExistingVM(m *machine, t TaskInfo) *vm {
	var best *vm
	bestConflicts := -1
	for _, vid := range m.residentList() {
		v := s.vms[vid]
		if v == nil || v.vmType != t.RequiredVMType {
			continue
		}
		conflicts := s.conflictCount(v, t.Priority)
		if best == nil || conflicts < bestConflicts ||
			(conflicts == bestConflicts && v.taskCount() < best.taskCount()) {
			best = v
			bestConflicts = conflicts
		}
	}
	return best
}

// conflictCount is the raw conflict count behind priorityAffinity,
// scoped to a single VM (used to pick among several resident VMs rather
// than to score a whole machine).
func (s *Scheduler) conflictCount(v *vm, priority Priority) int {
	conflicts := 0
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
		default:
			conflicts++
		}
	}
	return conflicts
}

// assignTask assigns t to v with its recorded priority and records the
// task_assignments entry (spec §4.C).
func (s *Scheduler) assignTask(v *vm, t TaskInfo) {
	s.sim.VMAddTask(v.id, t.ID, t.Priority)
	v.tasks[t.ID] = t.Priority
	s.taskAssignments[t.ID] = v.id
}

// drainPending replays the ON branch of the VM-selection subroutine for
// every task queued on m, then clears the queue (spec §4.F, on
// StateChangeComplete(S0)).
func (s *Scheduler) drainPending(m *machine, now Time) {
	pending := m.pending
	m.pending = nil
	for _, taskID := range pending {
		t := s.sim.GetTaskInfo(taskID)
		s.placeOnMachine(m, t, now)
	}
}
