package simhost

import "github.com/energysched/energysched/internal/engine"

// MachineSpec describes one PM to seed at Init.
type MachineSpec struct {
	CPUType     engine.CPUType `yaml:"cpu_type" mapstructure:"cpu_type"`
	NumCores    int            `yaml:"num_cores" mapstructure:"num_cores"`
	MemoryBytes int64          `yaml:"memory_bytes" mapstructure:"memory_bytes"`
	HasGPU      bool           `yaml:"has_gpu" mapstructure:"has_gpu"`
	Performance []float64      `yaml:"performance" mapstructure:"performance"` // MIPS per PState, P0 first
	Count       int            `yaml:"count" mapstructure:"count"`
}

// Topology is the cluster shape a run seeds at Init: a list of machine
// specs, each replicated Count times.
type Topology struct {
	Machines []MachineSpec `yaml:"machines" mapstructure:"machines"`
}

// SLATarget is the latency budget (from arrival) a task of a given SLA
// class must complete within to count as met in GetSLAReport.
type SLATarget map[engine.SLAClass]engine.Time

// Config parameterizes a Simulator run: everything about the physical
// world and workload that spec §1 places outside the core's scope.
type Config struct {
	Seed    int64       `yaml:"seed" mapstructure:"seed"`
	Horizon engine.Time `yaml:"horizon" mapstructure:"horizon"`

	Topology Topology `yaml:"topology" mapstructure:"topology"`

	// Workload: Poisson task arrivals at MeanArrivalInterval, mixed
	// across TaskMix.
	MeanArrivalInterval engine.Time   `yaml:"mean_arrival_interval" mapstructure:"mean_arrival_interval"`
	TaskMix             []TaskProfile `yaml:"task_mix" mapstructure:"task_mix"`

	SLATargets SLATarget `yaml:"sla_targets" mapstructure:"sla_targets"`

	MigrationLatency          engine.Time                   `yaml:"migration_latency" mapstructure:"migration_latency"`
	StateChangeLatency        map[engine.SState]engine.Time `yaml:"state_change_latency" mapstructure:"state_change_latency"`
	DefaultStateChangeLatency engine.Time                   `yaml:"default_state_change_latency" mapstructure:"default_state_change_latency"`

	TickInterval engine.Time `yaml:"tick_interval" mapstructure:"tick_interval"`

	// InstructionsPerTask is the fixed instruction cost of a task;
	// completion time is derived from the host PM's current MIPS at
	// dispatch (spec's original roofline-style throughput model,
	// simplified to a single MIPS figure per SPEC_FULL.md §4.J).
	InstructionsPerTask int64 `yaml:"instructions_per_task" mapstructure:"instructions_per_task"`
}

// TaskProfile is one entry of a workload mix, weighted by Weight.
type TaskProfile struct {
	CPUType    engine.CPUType   `yaml:"cpu_type" mapstructure:"cpu_type"`
	VMType     engine.VMType    `yaml:"vm_type" mapstructure:"vm_type"`
	Memory     int64            `yaml:"memory" mapstructure:"memory"`
	GPUCapable bool             `yaml:"gpu_capable" mapstructure:"gpu_capable"`
	SLA        engine.SLAClass  `yaml:"sla" mapstructure:"sla"`
	Priority   engine.Priority  `yaml:"priority" mapstructure:"priority"`
	Weight     float64          `yaml:"weight" mapstructure:"weight"`
}

// DefaultConfig returns a small two-CPU-type cluster (8 x86 and 4 arm
// PMs) suitable for smoke tests and examples.
func DefaultConfig() Config {
	return Config{
		Seed:    1,
		Horizon: 10_000_000,
		Topology: Topology{
			Machines: []MachineSpec{
				{CPUType: "x86", NumCores: 16, MemoryBytes: 64 << 30, Performance: []float64{4000, 3000, 2000, 1000}, Count: 8},
				{CPUType: "arm", NumCores: 32, MemoryBytes: 128 << 30, HasGPU: true, Performance: []float64{6000, 4500, 3000, 1500}, Count: 4},
			},
		},
		MeanArrivalInterval: 5000,
		TaskMix: []TaskProfile{
			{CPUType: "x86", VMType: "linux", Memory: 2 << 30, SLA: engine.SLA1, Priority: engine.MID, Weight: 0.7},
			{CPUType: "arm", VMType: "linux", Memory: 8 << 30, GPUCapable: true, SLA: engine.SLA0, Priority: engine.HIGH, Weight: 0.3},
		},
		SLATargets: SLATarget{
			engine.SLA0: 50_000,
			engine.SLA1: 200_000,
			engine.SLA2: 1_000_000,
			engine.SLA3: 5_000_000,
		},
		MigrationLatency: 20_000,
		StateChangeLatency: map[engine.SState]engine.Time{
			engine.S0i1: 500,
			engine.S1:   5_000,
			engine.S2:   20_000,
			engine.S3:   60_000,
			engine.S4:   180_000,
			engine.S5:   600_000,
		},
		DefaultStateChangeLatency: 2_000,
		TickInterval:              50_000,
		InstructionsPerTask:       4_000_000,
	}
}
