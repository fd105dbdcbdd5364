package simhost

import (
	"github.com/sirupsen/logrus"

	"github.com/energysched/energysched/internal/engine"
)

// Snapshot is the periodic cluster state simhost hands to whatever
// telemetry sink is wired in (SPEC_FULL.md §4.K). It carries no engine
// or simhost types by reference so a sink can serialize or retain it
// freely.
type Snapshot struct {
	Time            engine.Time
	MachinesOn      int
	MachinesTotal   int
	VMCount         int
	TaskCount       int
	ClusterEnergyWs float64
	SLAMetFraction  map[engine.SLAClass]float64
}

// Simulator is the reference discrete-event driver of spec §1: it owns
// the physical PM/VM/task model and the event heap, and calls into an
// engine.EventHandler (normally *engine.Scheduler) at every inbound
// event of spec §6. It also implements engine.Simulator, the outbound
// half of that boundary.
type Simulator struct {
	cfg Config
	log *logrus.Entry

	clock engine.Time
	heap  EventHeap

	rng      *PartitionedRNG
	workload *workloadGenerator

	machines map[engine.PMId]*physMachine
	nextPMID engine.PMId

	vms      map[engine.VMId]*physVM
	nextVMID engine.VMId

	tasks      map[engine.TaskId]*physTask
	nextTaskID engine.TaskId

	eng engine.EventHandler

	slaTotal map[engine.SLAClass]int64
	slaMet   map[engine.SLAClass]int64

	clusterEnergyWs  float64
	lastEnergyUpdate engine.Time

	// OnSnapshot, if set, is invoked once per PeriodicCheck with the
	// current cluster snapshot. Kept as a plain func field rather than
	// an imported telemetry.Publisher so simhost never depends on the
	// telemetry package (SPEC_FULL.md §4.K's non-blocking requirement is
	// the publisher's concern, not simhost's).
	OnSnapshot func(Snapshot)
}

// New builds a Simulator over cfg, ready to have its engine attached and
// Run called.
func New(cfg Config, log *logrus.Entry) *Simulator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Simulator{
		cfg:      cfg,
		log:      log,
		rng:      NewPartitionedRNG(cfg.Seed),
		machines: make(map[engine.PMId]*physMachine),
		vms:      make(map[engine.VMId]*physVM),
		tasks:    make(map[engine.TaskId]*physTask),
		slaTotal: make(map[engine.SLAClass]int64),
		slaMet:   make(map[engine.SLAClass]int64),
	}
	s.workload = newWorkloadGenerator(cfg, s.rng)
	s.seedTopology()
	return s
}

// seedTopology assigns PM ids 0..N-1 contiguously: engine.Scheduler.Init
// walks MachineGetTotal() machines by iterating PMId(0)..PMId(total-1),
// so ids here must match that convention exactly.
func (s *Simulator) seedTopology() {
	for _, spec := range s.cfg.Topology.Machines {
		for i := 0; i < spec.Count; i++ {
			id := s.nextPMID
			s.nextPMID++
			s.machines[id] = &physMachine{
				id:          id,
				cpuType:     spec.CPUType,
				numCores:    spec.NumCores,
				memoryBytes: spec.MemoryBytes,
				hasGPU:      spec.HasGPU,
				performance: spec.Performance,
				phase:       engine.PhaseON,
				sstate:      engine.S0,
				pstate:      engine.P0,
				cores:       make([]engine.PState, spec.NumCores),
				residents:   make(map[engine.VMId]bool),
			}
		}
	}
}

// Attach wires the engine handler that will receive every inbound event.
func (s *Simulator) Attach(eng engine.EventHandler) {
	s.eng = eng
}

// invariantChecker is the optional half of engine.EventHandler that
// *engine.Scheduler satisfies: Run re-validates invariants after every
// event when the attached handler supports it, so --debug-invariants
// actually exercises the core instead of only being reachable from tests.
type invariantChecker interface {
	CheckInvariants()
}

// Run drives the event loop from time 0 to cfg.Horizon, seeding the
// initial Init event, the first workload arrival and the first periodic
// tick, then popping events until the heap is empty or the next event
// lies past cfg.Horizon.
func (s *Simulator) Run() {
	s.schedule(newInitEvent(0))
	s.schedule(newNewTaskEvent(s.workload.nextInterval()))
	if s.cfg.TickInterval > 0 {
		s.schedule(newPeriodicCheckEvent(s.cfg.TickInterval))
	}

	checker, _ := s.eng.(invariantChecker)

	for {
		e := s.next()
		if e == nil || e.Timestamp() > s.cfg.Horizon {
			break
		}
		s.accrueEnergy(e.Timestamp())
		s.clock = e.Timestamp()
		e.Execute(s)
		if checker != nil {
			checker.CheckInvariants()
		}
	}
	s.eng.SimulationComplete(s.clock)
}

func (s *Simulator) handleInit(e *initEvent) {
	s.eng.Init(e.Timestamp())
}

// handleNewTask materializes the next workload arrival as a physTask,
// schedules the arrival after it so the process never stalls, then
// notifies the engine.
func (s *Simulator) handleNewTask(e *newTaskEvent) {
	profile := s.workload.pickProfile()
	s.nextTaskID++
	id := s.nextTaskID
	t := &physTask{
		id:                    id,
		requiredCPUType:       profile.CPUType,
		requiredVMType:        profile.VMType,
		memory:                profile.Memory,
		gpuCapable:            profile.GPUCapable,
		requiredSLA:           profile.SLA,
		priority:              profile.Priority,
		remainingInstructions: s.cfg.InstructionsPerTask,
		arrival:               e.Timestamp(),
		deadline:              e.Timestamp() + s.cfg.SLATargets[profile.SLA],
	}
	s.tasks[id] = t
	s.slaTotal[profile.SLA]++

	s.schedule(newNewTaskEvent(e.Timestamp() + s.workload.nextInterval()))
	s.eng.NewTask(e.Timestamp(), id)
}

func (s *Simulator) handleTaskComplete(e *taskCompleteEvent) {
	t := s.tasks[e.taskID]
	if t == nil {
		return
	}
	t.completion = e.Timestamp()
	if t.completion <= t.deadline {
		s.slaMet[t.requiredSLA]++
	}
	s.eng.TaskComplete(e.Timestamp(), e.taskID)
}

func (s *Simulator) handleMigrationDone(e *migrationDoneEvent) {
	v := s.vms[e.vmID]
	if v == nil {
		return
	}
	if old, ok := s.machines[v.host]; ok {
		old.removeResident(v.id)
	}
	v.host = v.migratingTo
	v.migratingTo = engine.Invalid
	if m, ok := s.machines[v.host]; ok {
		m.addResident(v.id)
	}
	s.eng.MigrationDone(e.Timestamp(), e.vmID)
}

func (s *Simulator) handleStateChangeComplete(e *stateChangeCompleteEvent) {
	m := s.machines[e.pmID]
	if m == nil {
		return
	}
	m.pendingTransition = false
	switch m.phase {
	case engine.PhaseTurningOn:
		m.phase = engine.PhaseON
		m.sstate = engine.S0
	case engine.PhaseTurningOff:
		m.phase = engine.PhaseOff
		if m.sstate == engine.S0 {
			m.sstate = s.cfg.defaultSleepFallback()
		}
	}
	m.lastPhaseChange = e.Timestamp()
	s.eng.StateChangeComplete(e.Timestamp(), e.pmID)
}

func (cfg *Config) defaultSleepFallback() engine.SState { return engine.S1 }

func (s *Simulator) handleMemoryWarning(e *memoryWarningEvent) {
	s.eng.MemoryWarning(e.Timestamp(), e.pmID)
}

func (s *Simulator) handleSLAWarning(e *slaWarningEvent) {
	s.eng.SLAWarning(e.Timestamp(), e.taskID)
}

func (s *Simulator) handlePeriodicCheck(e *periodicCheckEvent) {
	s.eng.PeriodicCheck(e.Timestamp())
	if s.cfg.TickInterval > 0 {
		s.schedule(newPeriodicCheckEvent(e.Timestamp() + s.cfg.TickInterval))
	}
	if s.OnSnapshot != nil {
		s.OnSnapshot(s.snapshot(e.Timestamp()))
	}
}

func (s *Simulator) handleSimulationComplete(e *simulationCompleteEvent) {}

func (s *Simulator) snapshot(now engine.Time) Snapshot {
	onCount := 0
	for _, m := range s.machines {
		if m.phase == engine.PhaseON {
			onCount++
		}
	}
	slaFraction := make(map[engine.SLAClass]float64, len(s.slaTotal))
	for class, total := range s.slaTotal {
		if total == 0 {
			continue
		}
		slaFraction[class] = float64(s.slaMet[class]) / float64(total)
	}
	return Snapshot{
		Time:            now,
		MachinesOn:      onCount,
		MachinesTotal:   len(s.machines),
		VMCount:         len(s.vms),
		TaskCount:       len(s.tasks),
		ClusterEnergyWs: s.clusterEnergyWs,
		SLAMetFraction:  slaFraction,
	}
}

// accrueEnergy integrates power draw over [lastEnergyUpdate, upTo) before
// the clock advances, using a coarse per-phase/per-pstate wattage model
// (SPEC_FULL.md §4.J): ON machines draw more at P0 than deeper P-states,
// STANDBY/OFF machines draw a small idle trickle.
func (s *Simulator) accrueEnergy(upTo engine.Time) {
	if upTo <= s.lastEnergyUpdate {
		return
	}
	dt := float64(upTo - s.lastEnergyUpdate)
	for _, m := range s.machines {
		s.clusterEnergyWs += dt * machineWattage(m) / 1e6 // microsecond ticks
	}
	s.lastEnergyUpdate = upTo
}

func machineWattage(m *physMachine) float64 {
	base := 20.0 // idle/standby draw
	switch m.phase {
	case engine.PhaseON:
		perCore := 8.0 - float64(m.pstate)*1.5
		return base + perCore*float64(m.numCores)
	case engine.PhaseTurningOn, engine.PhaseTurningOff:
		return base + 15
	default:
		return base * (1.0 - 0.15*float64(m.sstate))
	}
}
