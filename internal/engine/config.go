package engine

import "fmt"

// ScoringWeights are the tunable weights of the §4.B machine-scoring
// formula. Exact values are policy, not protocol (spec §4.B): zeroing
// all but one weight degenerates the weighted-objective scorer into a
// single-criterion ranking (see SPEC_FULL.md §9).
type ScoringWeights struct {
	State    float64 `yaml:"w_state" mapstructure:"w_state"`
	SState   float64 `yaml:"w_s_state" mapstructure:"w_s_state"`
	Cores    float64 `yaml:"w_cores" mapstructure:"w_cores"`
	Mem      float64 `yaml:"w_mem" mapstructure:"w_mem"`
	GPU      float64 `yaml:"w_gpu" mapstructure:"w_gpu"`
	Priority float64 `yaml:"w_priority" mapstructure:"w_priority"`
	Pending  float64 `yaml:"w_pending" mapstructure:"w_pending"`
	Time     float64 `yaml:"w_time" mapstructure:"w_time"`
	MIPS     float64 `yaml:"w_mips" mapstructure:"w_mips"`
}

// DefaultScoringWeights favors PMs already ON at a light sleep tier, with
// room, GPU fit, few priority conflicts and no wake queue (spec §4.B).
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		State:    3.0,
		SState:   1.5,
		Cores:    2.0,
		Mem:      2.0,
		GPU:      2.5,
		Priority: 1.5,
		Pending:  4.0,
		Time:     1.0,
		MIPS:     1.5,
	}
}

// EngineConfig groups every recognised configuration option from spec
// §4.A plus the REDESIGN-FLAG knobs decided in SPEC_FULL.md §REDESIGN
// FLAGS. Loadable from YAML (internal/config mirrors the teacher's
// sim/bundle.go PolicyBundle pattern) and layered with env/flags there.
type EngineConfig struct {
	// SleepState is the chosen sleep tier for an idle PM; may be mutated
	// at runtime by the Burst Detector (spec §4.A, §4.G).
	SleepState SState `yaml:"sleep_state" mapstructure:"sleep_state"`

	// MinPMFractionOn is the lower bound on the fraction of PMs kept ON
	// cluster-wide (spec §4.A, testable property 4).
	MinPMFractionOn float64 `yaml:"min_pm_fraction_on" mapstructure:"min_pm_fraction_on"`

	// ConsolidationUtilThreshold: below this utilisation score a PM is a
	// migration source in consolidation (spec §4.D).
	ConsolidationUtilThreshold float64 `yaml:"consolidation_util_threshold" mapstructure:"consolidation_util_threshold"`

	// SLAShedUtilThreshold: above this utilisation a PM triggers SLA
	// shedding (spec §4.H).
	SLAShedUtilThreshold float64 `yaml:"sla_shed_util_threshold" mapstructure:"sla_shed_util_threshold"`

	Weights ScoringWeights `yaml:"weights" mapstructure:"weights"`

	// Burst Detector tuning (spec §4.G).
	BurstWindowLength  Time   `yaml:"burst_window_length" mapstructure:"burst_window_length"` // W
	BurstRingLength    int    `yaml:"burst_ring_length" mapstructure:"burst_ring_length"`       // H
	BurstThreshold     int    `yaml:"burst_threshold" mapstructure:"burst_threshold"`
	QuietThreshold     int    `yaml:"quiet_threshold" mapstructure:"quiet_threshold"`
	QuietWindows       int    `yaml:"quiet_windows" mapstructure:"quiet_windows"`
	BurstSleepState    SState `yaml:"burst_sleep_state" mapstructure:"burst_sleep_state"`         // tier while in_burst
	NonBurstSleepState SState `yaml:"non_burst_sleep_state" mapstructure:"non_burst_sleep_state"` // tier once burst subsides

	// REDESIGN FLAG 1 (SPEC_FULL.md): per-core P-state down/up-clocking
	// thresholds evaluated by the Tick Driver (spec §4.I).
	DownclockUtilThreshold float64 `yaml:"downclock_util_threshold" mapstructure:"downclock_util_threshold"`
	UpclockUtilThreshold   float64 `yaml:"upclock_util_threshold" mapstructure:"upclock_util_threshold"`

	// Overload response (spec §4.I): raise MinPMFractionOn and pre-wake
	// additional PMs once cluster-wide load crosses these thresholds.
	OverloadCoreFillThreshold   float64 `yaml:"overload_core_fill_threshold" mapstructure:"overload_core_fill_threshold"`
	OverloadTasksPerVMThreshold float64 `yaml:"overload_tasks_per_vm_threshold" mapstructure:"overload_tasks_per_vm_threshold"`
	OverloadOffRatioThreshold   float64 `yaml:"overload_off_ratio_threshold" mapstructure:"overload_off_ratio_threshold"`

	// DebugInvariants enables the spec §7 InvariantViolation checks.
	// Off by default: the checks are O(cluster size) and meant for tests.
	DebugInvariants bool `yaml:"debug_invariants" mapstructure:"debug_invariants"`

	// InitialSleepCPUTypes lists CPU types that should be put into
	// NonBurstSleepState at Init (restores the original's "turn off the
	// ARM machines" behavior generalized, see SPEC_FULL.md §3).
	InitialSleepCPUTypes []CPUType `yaml:"initial_sleep_cpu_types" mapstructure:"initial_sleep_cpu_types"`
}

// DefaultEngineConfig returns the configuration used when none is loaded.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SleepState:                  S1,
		MinPMFractionOn:             0.2,
		ConsolidationUtilThreshold:  0.3,
		SLAShedUtilThreshold:        0.8,
		Weights:                     DefaultScoringWeights(),
		BurstWindowLength:           100000,
		BurstRingLength:             5,
		BurstThreshold:              50,
		QuietThreshold:              10,
		QuietWindows:                3,
		BurstSleepState:             S0i1,
		NonBurstSleepState:          S1,
		DownclockUtilThreshold:      0.3,
		UpclockUtilThreshold:        0.6,
		OverloadCoreFillThreshold:   0.9,
		OverloadTasksPerVMThreshold: 10,
		OverloadOffRatioThreshold:   0.5,
		DebugInvariants:             false,
	}
}

// Validate checks the configuration's invariants, mirroring the
// teacher's PolicyBundle.Validate pattern (sim/bundle.go).
func (c *EngineConfig) Validate() error {
	if c.MinPMFractionOn < 0 || c.MinPMFractionOn > 1 {
		return fmt.Errorf("min_pm_fraction_on must be in [0,1], got %f", c.MinPMFractionOn)
	}
	if c.ConsolidationUtilThreshold < 0 || c.ConsolidationUtilThreshold > 1 {
		return fmt.Errorf("consolidation_util_threshold must be in [0,1], got %f", c.ConsolidationUtilThreshold)
	}
	if c.SLAShedUtilThreshold < 0 || c.SLAShedUtilThreshold > 1 {
		return fmt.Errorf("sla_shed_util_threshold must be in [0,1], got %f", c.SLAShedUtilThreshold)
	}
	if c.BurstWindowLength <= 0 {
		return fmt.Errorf("burst_window_length must be > 0, got %d", c.BurstWindowLength)
	}
	if c.BurstRingLength <= 0 {
		return fmt.Errorf("burst_ring_length must be > 0, got %d", c.BurstRingLength)
	}
	if c.QuietWindows <= 0 {
		return fmt.Errorf("quiet_windows must be > 0, got %d", c.QuietWindows)
	}
	if c.DownclockUtilThreshold < 0 || c.DownclockUtilThreshold > c.UpclockUtilThreshold {
		return fmt.Errorf("downclock_util_threshold must be in [0, upclock_util_threshold], got %f", c.DownclockUtilThreshold)
	}
	if c.UpclockUtilThreshold > 1 {
		return fmt.Errorf("upclock_util_threshold must be <= 1, got %f", c.UpclockUtilThreshold)
	}
	return nil
}
