package engine

// Component E: Migration Lifecycle (spec §4.E).

// beginMigration issues VM_Migrate(v, target), records the in-flight
// entry, and removes v from its current host's resident set. The VM is
// not added to target's residents yet — it is logically in-flight until
// MigrationDone fires.
func (s *Scheduler) beginMigration(v *vm, target PMId) {
	if src, ok := s.machines[v.host]; ok {
		src.removeResident(v.id)
	}
	s.sim.VMMigrate(v.id, target)
	s.inFlight[v.id] = target
}

// MigrationDone is delivered when a prior VM_Migrate has finished (spec
// §4.E, §6).
func (s *Scheduler) MigrationDone(now Time, vmID VMId) {
	target, ok := s.inFlight[vmID]
	if !ok {
		s.log.Warnf("MigrationDone: vm %d has no in-flight entry", vmID)
		return
	}

	info := s.sim.VMGetInfo(vmID)
	if info.Host != target {
		s.log.Warnf("MigrationDone: vm %d reports host %d, expected in-flight target %d", vmID, info.Host, target)
	}

	v := s.vms[vmID]
	if v == nil {
		delete(s.inFlight, vmID)
		return
	}
	v.host = target

	if m, ok := s.machines[target]; ok {
		m.addResident(vmID)
	}
	delete(s.inFlight, vmID)

	// If V has zero active tasks at this moment (its task finished during
	// migration), shut it down now (spec §4.E step 3).
	if v.taskCount() == 0 {
		s.shutdownVM(v)
	}
}

// shutdownVM issues VM_Shutdown and removes v from every table the core
// owns. Callers must have already ensured v is not in s.inFlight (spec
// invariant 3) before calling this.
func (s *Scheduler) shutdownVM(v *vm) {
	if m, ok := s.machines[v.host]; ok {
		m.removeResident(v.id)
	}
	s.sim.VMShutdown(v.id)
	delete(s.vms, v.id)
}
