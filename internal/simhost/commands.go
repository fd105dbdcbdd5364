package simhost

import "github.com/energysched/energysched/internal/engine"

// The methods in this file implement engine.Simulator: the outbound
// queries and commands Scheduler issues against whatever is driving it
// (spec §6). Asynchronous commands (VMMigrate, MachineSetState) schedule
// their completion event here and return immediately, per spec §5.

func (s *Simulator) Now() engine.Time { return s.clock }

func (s *Simulator) MachineGetTotal() int { return len(s.machines) }

func (s *Simulator) MachineGetInfo(pm engine.PMId) engine.PMInfo {
	m := s.machines[pm]
	if m == nil {
		return engine.PMInfo{ID: engine.Invalid}
	}
	return m.info()
}

func (s *Simulator) MachineGetCPUType(pm engine.PMId) engine.CPUType {
	if m := s.machines[pm]; m != nil {
		return m.cpuType
	}
	return ""
}

func (s *Simulator) GetTaskInfo(t engine.TaskId) engine.TaskInfo {
	task := s.tasks[t]
	if task == nil {
		return engine.TaskInfo{ID: engine.Invalid}
	}
	return task.info()
}

func (s *Simulator) VMGetInfo(v engine.VMId) engine.VMInfo {
	vm := s.vms[v]
	if vm == nil {
		return engine.VMInfo{ID: engine.Invalid, Host: engine.Invalid}
	}
	return vm.info()
}

// GetSLAReport returns the fraction of class tasks that completed within
// their deadline so far, or 1.0 if none have arrived yet (spec §4's
// "nothing missed is the vacuous case").
func (s *Simulator) GetSLAReport(class engine.SLAClass) float64 {
	total := s.slaTotal[class]
	if total == 0 {
		return 1.0
	}
	return float64(s.slaMet[class]) / float64(total)
}

// MachineGetClusterEnergy returns the cluster's accumulated energy in
// kilowatt-hours (the unit engine.Scheduler.SimulationComplete prints).
func (s *Simulator) MachineGetClusterEnergy() float64 {
	s.accrueEnergy(s.clock)
	return s.clusterEnergyWs / 3.6e6
}

func (s *Simulator) VMCreate(vmType engine.VMType, cpuType engine.CPUType) engine.VMId {
	s.nextVMID++
	id := s.nextVMID
	s.vms[id] = &physVM{
		id:          id,
		vmType:      vmType,
		cpuType:     cpuType,
		host:        engine.Invalid,
		migratingTo: engine.Invalid,
		tasks:       make(map[engine.TaskId]bool),
	}
	return id
}

func (s *Simulator) VMAttach(v engine.VMId, pm engine.PMId) {
	vm := s.vms[v]
	m := s.machines[pm]
	if vm == nil || m == nil {
		return
	}
	vm.host = pm
	m.addResident(v)
}

// VMAddTask attaches t to v and schedules its TaskComplete event based
// on the host PM's MIPS at its current PState
// (SPEC_FULL.md §4.J's single-MIPS-figure simplification of the
// original roofline model).
func (s *Simulator) VMAddTask(v engine.VMId, t engine.TaskId, priority engine.Priority) {
	vm := s.vms[v]
	task := s.tasks[t]
	if vm == nil || task == nil {
		return
	}
	vm.tasks[t] = true
	task.priority = priority

	mips := s.taskMIPS(vm.host)
	var duration engine.Time
	if mips > 0 {
		duration = engine.Time(float64(task.remainingInstructions) / mips)
	} else {
		duration = engine.Time(s.cfg.InstructionsPerTask)
	}
	if duration < 1 {
		duration = 1
	}
	s.schedule(newTaskCompleteEvent(s.clock+duration, t))

	if m := s.machines[vm.host]; m != nil && s.committedMemory(m) > m.memoryBytes {
		s.schedule(newMemoryWarningEvent(s.clock, m.id))
	}

	warnAt := task.arrival + engine.Time(0.8*float64(s.cfg.SLATargets[task.requiredSLA]))
	if warnAt > s.clock {
		s.schedule(newSLAWarningEvent(warnAt, t))
	} else {
		s.schedule(newSLAWarningEvent(s.clock, t))
	}
}

// committedMemory sums the memory requirement of every task resident on
// m's VMs, mirroring engine.Scheduler.memUsedFraction's numerator so a
// warning fires exactly when the core's own view would call the PM
// overcommitted.
func (s *Simulator) committedMemory(m *physMachine) int64 {
	var used int64
	for vid := range m.residents {
		v := s.vms[vid]
		if v == nil {
			continue
		}
		for tid := range v.tasks {
			if t := s.tasks[tid]; t != nil {
				used += t.memory
			}
		}
	}
	return used
}

func (s *Simulator) taskMIPS(pm engine.PMId) float64 {
	m := s.machines[pm]
	if m == nil || len(m.performance) == 0 {
		return 0
	}
	idx := int(m.pstate)
	if idx >= len(m.performance) {
		idx = len(m.performance) - 1
	}
	return m.performance[idx]
}

// VMMigrate begins an asynchronous migration; MigrationDone fires after
// cfg.MigrationLatency (spec §4.E).
func (s *Simulator) VMMigrate(v engine.VMId, target engine.PMId) {
	vm := s.vms[v]
	if vm == nil {
		return
	}
	vm.migratingTo = target
	s.schedule(newMigrationDoneEvent(s.clock+s.cfg.MigrationLatency, v))
}

func (s *Simulator) VMShutdown(v engine.VMId) {
	vm := s.vms[v]
	if vm == nil {
		return
	}
	if m := s.machines[vm.host]; m != nil {
		m.removeResident(v)
	}
	delete(s.vms, v)
}

// MachineSetState begins an asynchronous power transition; the phase is
// flipped to its "turning" value immediately (queries should see the
// transition in progress) and StateChangeComplete fires after the
// target tier's transition latency (spec §4.F).
func (s *Simulator) MachineSetState(pm engine.PMId, st engine.SState) {
	m := s.machines[pm]
	if m == nil || m.pendingTransition {
		return
	}
	m.sstate = st
	m.pendingTransition = true
	if st == engine.S0 {
		m.phase = engine.PhaseTurningOn
	} else {
		m.phase = engine.PhaseTurningOff
	}
	latency := s.cfg.transitionLatency(st)
	s.schedule(newStateChangeCompleteEvent(s.clock+latency, pm))
}

func (s *Simulator) MachineSetCorePerformance(pm engine.PMId, core int, p engine.PState) {
	m := s.machines[pm]
	if m == nil || core < 0 || core >= len(m.cores) {
		return
	}
	m.cores[core] = p
	m.pstate = p
}

func (s *Simulator) SetTaskPriority(t engine.TaskId, p engine.Priority) {
	if task := s.tasks[t]; task != nil {
		task.priority = p
	}
}
