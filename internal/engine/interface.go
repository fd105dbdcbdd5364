package engine

// Simulator is the outbound half of the spec §6 boundary: the queries
// and commands the core issues against whatever is driving it. A
// reference implementation lives in internal/simhost; tests in this
// package implement a fake directly.
//
// All methods are treated as synchronous from the core's perspective.
// Commands whose real-world effect is asynchronous (VM_Migrate,
// Machine_SetState) still return immediately here; their completion is
// reported later via the inbound MigrationDone / StateChangeComplete
// events (spec §5).
type Simulator interface {
	// Queries
	Now() Time
	MachineGetTotal() int
	MachineGetInfo(pm PMId) PMInfo
	MachineGetCPUType(pm PMId) CPUType
	GetTaskInfo(t TaskId) TaskInfo
	VMGetInfo(v VMId) VMInfo
	GetSLAReport(class SLAClass) float64
	MachineGetClusterEnergy() float64

	// Actions
	VMCreate(vmType VMType, cpuType CPUType) VMId
	VMAttach(v VMId, pm PMId)
	VMAddTask(v VMId, t TaskId, priority Priority)
	VMMigrate(v VMId, target PMId)
	VMShutdown(v VMId)
	MachineSetState(pm PMId, s SState)
	MachineSetCorePerformance(pm PMId, core int, p PState)
	SetTaskPriority(t TaskId, p Priority)
}

// EventHandler is the inbound half of the spec §6 boundary: the events a
// driver delivers to the core. Scheduler implements this interface.
type EventHandler interface {
	Init(now Time)
	NewTask(now Time, t TaskId)
	TaskComplete(now Time, t TaskId)
	MigrationDone(now Time, v VMId)
	StateChangeComplete(now Time, pm PMId)
	MemoryWarning(now Time, pm PMId)
	SLAWarning(now Time, t TaskId)
	PeriodicCheck(now Time)
	SimulationComplete(now Time)
}
