package simhost

import "github.com/energysched/energysched/internal/engine"

// Report summarizes a completed run: the literal figures the teacher's
// cluster report printed (SPEC_FULL.md §3's restored GetSLAReport
// driven summary), extended with the energy total spec §4's objective
// ultimately optimizes for.
type Report struct {
	TotalTasks      int
	TotalMachines   int
	MachinesOnAtEnd int
	ClusterEnergyWs float64
	SLAMetFraction  map[engine.SLAClass]float64
}

// FinalReport assembles a Report from the simulator's end-of-run state.
func (s *Simulator) FinalReport() Report {
	s.accrueEnergy(s.clock)
	onCount := 0
	for _, m := range s.machines {
		if m.phase == engine.PhaseON {
			onCount++
		}
	}
	slaFraction := make(map[engine.SLAClass]float64, 4)
	for _, class := range []engine.SLAClass{engine.SLA0, engine.SLA1, engine.SLA2, engine.SLA3} {
		slaFraction[class] = s.GetSLAReport(class)
	}
	return Report{
		TotalTasks:      len(s.tasks),
		TotalMachines:   len(s.machines),
		MachinesOnAtEnd: onCount,
		ClusterEnergyWs: s.clusterEnergyWs,
		SLAMetFraction:  slaFraction,
	}
}
