package simhost

import "github.com/energysched/energysched/internal/engine"

// physVM mirrors a VM's physical placement. host is the VM's last
// completed placement; migratingTo is set for the duration of an
// in-flight VM_Migrate so VMGetInfo can still answer sensibly (the core
// itself stops trusting the host field the moment it issues the
// migration, per spec §4.E, but nothing stops another component from
// asking).
type physVM struct {
	id      engine.VMId
	vmType  engine.VMType
	cpuType engine.CPUType
	host    engine.PMId
	tasks   map[engine.TaskId]bool

	migratingTo engine.PMId
}

func (v *physVM) info() engine.VMInfo {
	tasks := make([]engine.TaskId, 0, len(v.tasks))
	for t := range v.tasks {
		tasks = append(tasks, t)
	}
	return engine.VMInfo{
		ID:      v.id,
		VMType:  v.vmType,
		CPUType: v.cpuType,
		Host:    v.host,
		Tasks:   tasks,
	}
}
