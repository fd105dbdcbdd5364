package engine

// fakeSim is a minimal in-memory Simulator used across this package's
// tests, built directly against the Simulator interface rather than
// reusing internal/simhost (which would make engine depend on its own
// reference driver).
type fakeSim struct {
	now Time

	pms   map[PMId]*fakePM
	order []PMId

	vms     map[VMId]*VMInfo
	nextVM  VMId

	tasks map[TaskId]*TaskInfo

	slaReport map[SLAClass]float64
	energy    float64

	migrateCalls []struct{ VM VMId; Target PMId }
	stateCalls   []struct{ PM PMId; S SState }
}

type fakePM struct {
	info PMInfo
}

func newFakeSim() *fakeSim {
	return &fakeSim{
		pms:       make(map[PMId]*fakePM),
		vms:       make(map[VMId]*VMInfo),
		tasks:     make(map[TaskId]*TaskInfo),
		slaReport: make(map[SLAClass]float64),
	}
}

func (f *fakeSim) addPM(info PMInfo) {
	info.Phase = PhaseON
	info.SState = S0
	f.pms[info.ID] = &fakePM{info: info}
	f.order = append(f.order, info.ID)
}

func (f *fakeSim) addTask(t TaskInfo) { f.tasks[t.ID] = &t }

func (f *fakeSim) Now() Time { return f.now }

func (f *fakeSim) MachineGetTotal() int { return len(f.pms) }

func (f *fakeSim) MachineGetInfo(pm PMId) PMInfo {
	p, ok := f.pms[pm]
	if !ok {
		return PMInfo{ID: PMId(Invalid)}
	}
	residents := make([]VMId, 0)
	for vid, v := range f.vms {
		if v.Host == pm {
			residents = append(residents, vid)
		}
	}
	p.info.Residents = residents
	return p.info
}

func (f *fakeSim) MachineGetCPUType(pm PMId) CPUType {
	if p, ok := f.pms[pm]; ok {
		return p.info.CPUType
	}
	return ""
}

func (f *fakeSim) GetTaskInfo(t TaskId) TaskInfo {
	if ti, ok := f.tasks[t]; ok {
		return *ti
	}
	return TaskInfo{ID: TaskId(Invalid)}
}

func (f *fakeSim) VMGetInfo(v VMId) VMInfo {
	if vi, ok := f.vms[v]; ok {
		return *vi
	}
	return VMInfo{ID: VMId(Invalid), Host: PMId(Invalid)}
}

func (f *fakeSim) GetSLAReport(class SLAClass) float64 {
	if v, ok := f.slaReport[class]; ok {
		return v
	}
	return 1.0
}

func (f *fakeSim) MachineGetClusterEnergy() float64 { return f.energy }

func (f *fakeSim) VMCreate(vmType VMType, cpuType CPUType) VMId {
	f.nextVM++
	f.vms[f.nextVM] = &VMInfo{ID: f.nextVM, VMType: vmType, CPUType: cpuType, Host: PMId(Invalid)}
	return f.nextVM
}

func (f *fakeSim) VMAttach(v VMId, pm PMId) {
	if vi, ok := f.vms[v]; ok {
		vi.Host = pm
	}
}

func (f *fakeSim) VMAddTask(v VMId, t TaskId, priority Priority) {
	if vi, ok := f.vms[v]; ok {
		vi.Tasks = append(vi.Tasks, t)
	}
	if ti, ok := f.tasks[t]; ok {
		ti.Priority = priority
	}
}

func (f *fakeSim) VMMigrate(v VMId, target PMId) {
	f.migrateCalls = append(f.migrateCalls, struct{ VM VMId; Target PMId }{v, target})
}

func (f *fakeSim) VMShutdown(v VMId) { delete(f.vms, v) }

func (f *fakeSim) MachineSetState(pm PMId, s SState) {
	f.stateCalls = append(f.stateCalls, struct{ PM PMId; S SState }{pm, s})
	if p, ok := f.pms[pm]; ok {
		p.info.SState = s
	}
}

func (f *fakeSim) MachineSetCorePerformance(pm PMId, core int, p PState) {
	if pm2, ok := f.pms[pm]; ok {
		pm2.info.CurrentPState = p
	}
}

func (f *fakeSim) SetTaskPriority(t TaskId, p Priority) {
	if ti, ok := f.tasks[t]; ok {
		ti.Priority = p
	}
}
