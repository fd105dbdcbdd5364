package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Scheduler is the core: it implements EventHandler and issues commands
// against a Simulator. It embeds *Cluster for direct field access from
// every component file in this package (scoring.go, placement.go,
// consolidation.go, migration.go, power.go, burst.go, sla.go, tick.go)
// — the "single owned model struct passed by reference through the
// handlers" called for in spec §9.
type Scheduler struct {
	*Cluster

	sim Simulator
	log *logrus.Entry

	maxMIPS float64

	burst burstDetector

	completedTasks int64
}

// NewScheduler constructs a Scheduler. Call Init before delivering any
// other event.
func NewScheduler(cfg EngineConfig, sim Simulator, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.New()
	}
	return &Scheduler{
		Cluster: NewCluster(cfg),
		sim:     sim,
		log:     log.WithField("component", "engine"),
		burst:   newBurstDetector(cfg),
	}
}

// Init mirrors every PM from the simulator into the Cluster model (spec
// §4.A) and applies EngineConfig.InitialSleepCPUTypes (SPEC_FULL.md §3).
func (s *Scheduler) Init(now Time) {
	total := s.sim.MachineGetTotal()
	for i := 0; i < total; i++ {
		pm := PMId(i)
		info := s.sim.MachineGetInfo(pm)
		s.seedMachine(info, now)
		if info.Performance != nil {
			for _, mips := range info.Performance {
				if mips > s.maxMIPS {
					s.maxMIPS = mips
				}
			}
		}
	}

	for _, cpuType := range s.cfg.InitialSleepCPUTypes {
		for _, m := range s.machinesWithCPUType(cpuType) {
			s.beginSleep(m, s.cfg.NonBurstSleepState, now)
		}
	}

	s.log.Infof("Init: %d machines, %d initially ON", total, s.onCount)
}

// SimulationComplete restores the original CloudSim's exact final report
// (original_source/Scheduler.cpp's SimulationComplete/Shutdown,
// SPEC_FULL.md §3): SLA0/1/2 compliance percentages, cluster energy, and
// shuts down every VM the core still tracks, in-flight ones included.
func (s *Scheduler) SimulationComplete(now Time) {
	fmt.Println("SLA violation report")
	fmt.Printf("SLA0: %.2f%%\n", s.sim.GetSLAReport(SLA0)*100)
	fmt.Printf("SLA1: %.2f%%\n", s.sim.GetSLAReport(SLA1)*100)
	fmt.Printf("SLA2: %.2f%%\n", s.sim.GetSLAReport(SLA2)*100)
	fmt.Printf("Total Energy %.2fKW-Hour\n", s.sim.MachineGetClusterEnergy())
	fmt.Printf("Simulation run finished in %.6f seconds\n", float64(now)/1e6)

	for id := range s.vms {
		s.sim.VMShutdown(id)
	}
	s.log.Info("SimulationComplete: finished")
}

// MemoryWarning is logged and never fatal (spec §7). Richer variants may
// trigger a best-effort migration; this implementation logs only, since
// spec §4 names no concrete reaction and the spec explicitly forbids
// inventing one ("never fatal" is the only hard requirement).
func (s *Scheduler) MemoryWarning(now Time, pm PMId) {
	s.log.Warnf("MemoryWarning: pm %d overcommitted at %d", pm, now)
}
