package engine

import "sort"

// machine is the core's in-memory mirror of a PM's dynamic state (spec
// §3's "Machine (PM)" entity). Static hardware properties are queried
// from the Simulator and cached here at Init; dynamic fields (phase,
// s-state, residents, pending queue) are owned and mutated only by the
// core, per spec §5's single-writer model.
type machine struct {
	id          PMId
	cpuType     CPUType
	numCores    int
	memoryBytes int64
	hasGPU      bool
	performance []float64 // MIPS per PState, P0 fastest

	phase           Phase
	sstate          SState
	pstate          PState
	residents       map[VMId]bool
	lastPhaseChange Time
	pending         []TaskId // spec invariant 5
}

func (m *machine) residentList() []VMId {
	out := make([]VMId, 0, len(m.residents))
	for v := range m.residents {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// vm is the core's record of a hosted execution context (spec §3's "VM"
// entity).
type vm struct {
	id      VMId
	vmType  VMType
	cpuType CPUType
	host    PMId // last completed placement; the in-flight target lives in Cluster.inFlight
	tasks   map[TaskId]Priority
}

func (v *vm) taskCount() int { return len(v.tasks) }

// Cluster is Component A: the process-wide, single-threaded in-memory
// mirror of PMs, VMs, tasks, pending placements and in-flight migrations
// (spec §3, §4.A). It is embedded in Scheduler rather than exported on
// its own, since every mutation is reached through a handler.
type Cluster struct {
	cfg EngineConfig

	machines map[PMId]*machine
	vms      map[VMId]*vm

	// taskAssignments: TaskId -> hosting VM, while the task is live.
	taskAssignments map[TaskId]VMId

	// inFlight: VMId -> target PMId. Entry exists iff a VM_Migrate has
	// been issued and MigrationDone has not yet fired (spec §3, §4.E).
	inFlight map[VMId]PMId

	onCount    int
	totalPMs   int

	slaViolations    map[SLAClass]int64
	completedBySLA   map[SLAClass]int64
}

// NewCluster creates an empty Cluster model, configured per cfg.
func NewCluster(cfg EngineConfig) *Cluster {
	return &Cluster{
		cfg:             cfg,
		machines:        make(map[PMId]*machine),
		vms:             make(map[VMId]*vm),
		taskAssignments: make(map[TaskId]VMId),
		inFlight:        make(map[VMId]PMId),
		slaViolations:   make(map[SLAClass]int64),
		completedBySLA:  make(map[SLAClass]int64),
	}
}

// seedMachine registers a PM at Init time: phase = ON, empty resident
// set, last-change = now (spec §4.A).
func (c *Cluster) seedMachine(info PMInfo, now Time) {
	m := &machine{
		id:              info.ID,
		cpuType:         info.CPUType,
		numCores:        info.NumCores,
		memoryBytes:     info.MemoryBytes,
		hasGPU:          info.HasGPU,
		performance:     info.Performance,
		phase:           PhaseON,
		sstate:          S0,
		pstate:          P0,
		residents:       make(map[VMId]bool),
		lastPhaseChange: now,
	}
	c.machines[m.id] = m
	c.totalPMs++
	c.onCount++
}

// machinesWithCPUType returns every PM whose cpu type matches, in
// ascending id order (for deterministic tie-breaking, spec §8 S1).
func (c *Cluster) machinesWithCPUType(cpuType CPUType) []*machine {
	out := make([]*machine, 0, len(c.machines))
	for _, m := range c.machines {
		if m.cpuType == cpuType {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// onMachinesSorted returns every ON-phase PM sorted ascending by the
// utilisation-only sub-score used by consolidation (spec §4.D) and SLA
// shedding (spec §4.H): core_fill + mem_used_fraction weighted 3:1,
// averaged, ties broken by PM id for determinism.
func (c *Cluster) onMachinesSorted(s *Scheduler) []*machine {
	out := make([]*machine, 0, len(c.machines))
	for _, m := range c.machines {
		if m.phase == PhaseON {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ui, uj := utilizationScore(out[i], s), utilizationScore(out[j], s)
		if ui != uj {
			return ui < uj
		}
		return out[i].id < out[j].id
	})
	return out
}

// utilizationScore is the utilisation-only sub-score of spec §4.D:
// (3*core_fill + 1*mem_used_fraction) / 4.
func utilizationScore(m *machine, s *Scheduler) float64 {
	cf := coreFill(m)
	used := s.memUsedFraction(m)
	return (3*cf + used) / 4
}

// memUsedFraction sums the memory requirement of every task resident on
// m's VMs and divides by m's total memory, clamped to [0,1].
func (s *Scheduler) memUsedFraction(m *machine) float64 {
	if m.memoryBytes <= 0 {
		return 0
	}
	var used int64
	for vid := range m.residents {
		v := s.vms[vid]
		if v == nil {
			continue
		}
		for t := range v.tasks {
			used += s.sim.GetTaskInfo(t).Memory
		}
	}
	frac := float64(used) / float64(m.memoryBytes)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac
}

// removeResident removes v from m's resident set, used by consolidation,
// migration and shutdown paths alike to keep the set mutation in one
// place (spec §9's iterator-invalidation-hazard note: callers must
// snapshot before iterating, this helper is safe to call mid-sweep since
// it never iterates residents itself).
func (m *machine) removeResident(v VMId) {
	delete(m.residents, v)
}

func (m *machine) addResident(v VMId) {
	m.residents = orEmpty(m.residents)
	m.residents[v] = true
}

func orEmpty(m map[VMId]bool) map[VMId]bool {
	if m == nil {
		return make(map[VMId]bool)
	}
	return m
}
