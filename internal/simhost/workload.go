package simhost

import "github.com/energysched/energysched/internal/engine"

// workloadGenerator produces a Poisson task arrival process from a
// weighted mix of TaskProfiles, grounded on the teacher's workload
// generator shape but replacing token/request profiles with the task
// profiles of SPEC_FULL.md §4.J.
type workloadGenerator struct {
	cfg   Config
	rng   *PartitionedRNG
	total float64
}

func newWorkloadGenerator(cfg Config, rng *PartitionedRNG) *workloadGenerator {
	var total float64
	for _, p := range cfg.TaskMix {
		total += p.Weight
	}
	return &workloadGenerator{cfg: cfg, rng: rng, total: total}
}

// nextInterval draws an exponentially distributed inter-arrival gap with
// mean cfg.MeanArrivalInterval.
func (w *workloadGenerator) nextInterval() engine.Time {
	r := w.rng.For("workload")
	if w.cfg.MeanArrivalInterval <= 0 {
		return 1
	}
	gap := r.ExpFloat64() * float64(w.cfg.MeanArrivalInterval)
	if gap < 1 {
		gap = 1
	}
	return engine.Time(gap)
}

// pickProfile draws a TaskProfile weighted by Weight.
func (w *workloadGenerator) pickProfile() TaskProfile {
	r := w.rng.For("workload")
	if len(w.cfg.TaskMix) == 0 || w.total <= 0 {
		return TaskProfile{CPUType: "x86", VMType: "linux", Memory: 1 << 30, SLA: engine.SLA2, Priority: engine.MID, Weight: 1}
	}
	x := r.Float64() * w.total
	for _, p := range w.cfg.TaskMix {
		x -= p.Weight
		if x <= 0 {
			return p
		}
	}
	return w.cfg.TaskMix[len(w.cfg.TaskMix)-1]
}
