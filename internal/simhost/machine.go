package simhost

import "github.com/energysched/energysched/internal/engine"

// physMachine is the physical truth behind an engine.PMId: the hardware
// properties the core queries once at Init, plus the dynamic fields a
// Simulator (not the core) is responsible for advancing as commands and
// timers fire.
type physMachine struct {
	id          engine.PMId
	cpuType     engine.CPUType
	numCores    int
	memoryBytes int64
	hasGPU      bool
	performance []float64 // MIPS per PState index, P0 fastest

	phase   engine.Phase
	sstate  engine.SState
	pstate  engine.PState
	cores   []engine.PState

	lastPhaseChange engine.Time
	residents       map[engine.VMId]bool

	// pendingTransition is non-zero while a Machine_SetState command is
	// in flight, i.e. between the command and the StateChangeComplete
	// event it schedules.
	pendingTransition bool
}

func (m *physMachine) addResident(v engine.VMId) {
	if m.residents == nil {
		m.residents = make(map[engine.VMId]bool)
	}
	m.residents[v] = true
}

func (m *physMachine) removeResident(v engine.VMId) {
	delete(m.residents, v)
}

func (m *physMachine) info() engine.PMInfo {
	residents := make([]engine.VMId, 0, len(m.residents))
	for v := range m.residents {
		residents = append(residents, v)
	}
	return engine.PMInfo{
		ID:              m.id,
		CPUType:         m.cpuType,
		NumCores:        m.numCores,
		MemoryBytes:     m.memoryBytes,
		HasGPU:          m.hasGPU,
		Performance:     m.performance,
		CurrentPState:   m.pstate,
		Phase:           m.phase,
		SState:          m.sstate,
		Residents:       residents,
		LastPhaseChange: m.lastPhaseChange,
	}
}

// transitionLatency is how long a Machine_SetState command to target
// phase/s-state takes to complete, coarsely modeled as a function of
// sleep depth: deeper tiers take longer to enter and to leave.
func (cfg *Config) transitionLatency(target engine.SState) engine.Time {
	if lat, ok := cfg.StateChangeLatency[target]; ok {
		return lat
	}
	return cfg.DefaultStateChangeLatency
}
