// Package engine implements the placement and consolidation core of the
// energy-aware cloud workload scheduler: the event-driven state machine
// that tracks PM power states, VM residency, task assignment and
// in-flight migrations, plus the placement, consolidation, SLA-reaction
// and burst-detection policies that decide what the state machine does.
//
// The core is single-threaded and cooperative: every exported handler on
// Scheduler runs to completion and returns before the next one is called.
// No handler here spawns a goroutine, blocks on a channel, or sleeps.
package engine

import "fmt"

// PMId, VMId and TaskId are opaque identifiers supplied by the simulator.
// They are distinct types (not aliases) so a PMId can never be passed
// where a VMId is expected by accident.
type PMId int64
type VMId int64
type TaskId int64

// Invalid is the sentinel for "no id", replacing the source's ambiguous
// "unsigned = -1" convention (spec §9).
const Invalid = -1

// Time is an integer microsecond timestamp, as delivered by the simulator.
type Time int64

// Phase is a PM's power phase.
type Phase int

const (
	PhaseON Phase = iota
	PhaseTurningOn
	PhaseTurningOff
	PhaseStandby
	PhaseOff
)

func (p Phase) String() string {
	switch p {
	case PhaseON:
		return "ON"
	case PhaseTurningOn:
		return "TURNING_ON"
	case PhaseTurningOff:
		return "TURNING_OFF"
	case PhaseStandby:
		return "STANDBY"
	case PhaseOff:
		return "OFF"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// SState is a PM's power sleep tier. The ladder S0 < S0i1 < S1 < ... < S5:
// deeper tiers are slower to wake but cheaper to maintain.
type SState int

const (
	S0 SState = iota
	S0i1
	S1
	S2
	S3
	S4
	S5
)

func (s SState) String() string {
	switch s {
	case S0:
		return "S0"
	case S0i1:
		return "S0i1"
	case S1:
		return "S1"
	case S2:
		return "S2"
	case S3:
		return "S3"
	case S4:
		return "S4"
	case S5:
		return "S5"
	default:
		return fmt.Sprintf("SState(%d)", int(s))
	}
}

// PState is an active PM core's clock/performance tier. P0 is fastest.
type PState int

const (
	P0 PState = iota
	P1
	P2
	P3
)

// CPUType identifies an instruction-set family a Task requires and a PM
// provides (e.g. "x86", "arm").
type CPUType string

// VMType identifies the guest OS/runtime a Task requires
// (e.g. "linux", "win").
type VMType string

// SLAClass is the requested service-level agreement class.
type SLAClass int

const (
	SLA0 SLAClass = iota
	SLA1
	SLA2
	SLA3
)

func (s SLAClass) String() string {
	return fmt.Sprintf("SLA%d", int(s))
}

// Priority is a task's scheduling priority.
type Priority int

const (
	LOW Priority = iota
	MID
	HIGH
)

func (p Priority) String() string {
	switch p {
	case HIGH:
		return "HIGH"
	case MID:
		return "MID"
	case LOW:
		return "LOW"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// TaskInfo is the subset of task state the scheduler queries from the
// simulator. It is a snapshot, not a live handle (spec §5's
// shared-resource policy: "each *_GetInfo call returns a snapshot").
type TaskInfo struct {
	ID                     TaskId
	RequiredCPUType        CPUType
	RequiredVMType         VMType
	Memory                 int64 // bytes
	GPUCapable             bool
	RequiredSLA            SLAClass
	Priority               Priority
	RemainingInstructions  int64
	Completion             Time // 0 / not-yet-set until the task completes
}

// PMInfo is the subset of PM state the scheduler queries from the
// simulator: static hardware properties plus the dynamic fields the core
// itself owns and mirrors (spec §3, Machine entity).
type PMInfo struct {
	ID              PMId
	CPUType         CPUType
	NumCores        int
	MemoryBytes     int64
	HasGPU          bool
	Performance     []float64 // MIPS per PState index, P0 fastest
	CurrentPState   PState

	Phase             Phase
	SState            SState
	Residents         []VMId
	LastPhaseChange   Time
}

// VMInfo is the subset of VM state the scheduler queries from the
// simulator.
type VMInfo struct {
	ID      VMId
	VMType  VMType
	CPUType CPUType
	Host    PMId // last completed placement; unchanged by VMMigrate until the migration finishes
	Tasks   []TaskId
}
