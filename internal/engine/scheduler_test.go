package engine

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testConfig() EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.DebugInvariants = true
	return cfg
}

func quietLog() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// TestNewTask_PlacesOnHighestScoringOnMachine verifies BC-C: given two
// identical ON PMs of matching CPU type, both score highest, and NewTask
// breaks the tie to the lowest PM id.
func TestNewTask_PlacesOnHighestScoringOnMachine(t *testing.T) {
	sim := newFakeSim()
	sim.addPM(PMInfo{ID: 0, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100, 50}})
	sim.addPM(PMInfo{ID: 1, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100, 50}})

	s := NewScheduler(testConfig(), sim, quietLog())
	s.Init(0)

	sim.addTask(TaskInfo{ID: 1, RequiredCPUType: "x86", RequiredVMType: "linux", Memory: 1 << 20, Priority: MID})
	s.NewTask(0, 1)

	require.Len(t, sim.vms, 1)
	for _, v := range sim.vms {
		require.Equal(t, PMId(0), v.Host, "tie between identically-scored PMs must break to the lowest id")
	}
}

// TestNewTask_NoCompatibleMachine verifies that a task whose required CPU
// type matches no PM anywhere in the cluster is fatal (spec §7): there is
// no recovery path, so the handler panics with a diagnostic dump rather
// than silently dropping the task.
func TestNewTask_NoCompatibleMachine(t *testing.T) {
	sim := newFakeSim()
	sim.addPM(PMInfo{ID: 0, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100}})
	s := NewScheduler(testConfig(), sim, quietLog())
	s.Init(0)

	sim.addTask(TaskInfo{ID: 1, RequiredCPUType: "arm", RequiredVMType: "linux"})
	require.Panics(t, func() { s.NewTask(0, 1) })

	require.Empty(t, sim.vms)
}

// TestNewTask_WakesOffMachineAndQueuesTask verifies spec §4.C/§4.F: a
// task routed to an OFF PM issues Machine_SetState(S0) and queues the
// task rather than placing it immediately; StateChangeComplete then
// drains the queue.
func TestNewTask_WakesOffMachineAndQueuesTask(t *testing.T) {
	sim := newFakeSim()
	sim.addPM(PMInfo{ID: 0, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100}})
	s := NewScheduler(testConfig(), sim, quietLog())
	s.Init(0)
	m := s.machines[0]
	m.phase = PhaseOff
	s.onCount = 0

	sim.addTask(TaskInfo{ID: 1, RequiredCPUType: "x86", RequiredVMType: "linux"})
	s.NewTask(0, 1)

	require.Empty(t, sim.vms, "task must be queued, not placed, while the PM is OFF")
	require.Len(t, m.pending, 1)
	require.Len(t, sim.stateCalls, 1)
	require.Equal(t, S0, sim.stateCalls[0].S)

	s.StateChangeComplete(10, 0)
	require.Len(t, sim.vms, 1, "draining the pending queue must place the task once the PM reaches S0")
	require.Empty(t, m.pending)
}

// TestTaskComplete_ShutsDownEmptyVM verifies spec §4.D: when a task
// completes and leaves its VM with zero resident tasks, and the VM is
// not migrating, the VM is shut down.
func TestTaskComplete_ShutsDownEmptyVM(t *testing.T) {
	sim := newFakeSim()
	sim.addPM(PMInfo{ID: 0, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100}})
	s := NewScheduler(testConfig(), sim, quietLog())
	s.Init(0)

	sim.addTask(TaskInfo{ID: 1, RequiredCPUType: "x86", RequiredVMType: "linux"})
	s.NewTask(0, 1)
	require.Len(t, sim.vms, 1)

	s.TaskComplete(5, 1)
	require.Empty(t, sim.vms, "the VM's only task completed so it must be shut down")
	require.Equal(t, int64(1), s.completedBySLA[SLA0])
}

// TestConsolidateFrom_MigratesResidentsAndSleepsSource verifies spec §4.D
// steps 4-5: an under-utilised source's resident VM is migrated onto the
// only other same-CPU-type ON PM, and the now-empty source is put to
// sleep.
func TestConsolidateFrom_MigratesResidentsAndSleepsSource(t *testing.T) {
	sim := newFakeSim()
	sim.addPM(PMInfo{ID: 0, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100}})
	sim.addPM(PMInfo{ID: 1, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100}})

	cfg := testConfig()
	cfg.MinPMFractionOn = 0
	s := NewScheduler(cfg, sim, quietLog())
	s.Init(0)

	// Seed pm1 (the migration source) with one resident VM directly,
	// bypassing NewTask, so pm0 stays empty as the only migration target.
	vmID := sim.VMCreate("linux", "x86")
	sim.VMAttach(vmID, 1)
	s.vms[vmID] = &vm{id: vmID, vmType: "linux", cpuType: "x86", host: 1, tasks: map[TaskId]Priority{1: MID}}
	s.machines[1].addResident(vmID)

	sorted := s.onMachinesSorted(s)
	s.consolidateFrom(s.machines[1], sorted, 1)

	require.Len(t, sim.migrateCalls, 1)
	require.Equal(t, vmID, sim.migrateCalls[0].VM)
	require.Equal(t, PMId(0), sim.migrateCalls[0].Target)
	require.Equal(t, PhaseTurningOff, s.machines[1].phase, "the emptied source must be put to sleep")
}

// TestMigrationDone_UpdatesResidencyAndInFlightTable verifies spec §4.E
// and invariant 2/3.
func TestMigrationDone_UpdatesResidencyAndInFlightTable(t *testing.T) {
	sim := newFakeSim()
	sim.addPM(PMInfo{ID: 0, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100}})
	sim.addPM(PMInfo{ID: 1, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100}})
	s := NewScheduler(testConfig(), sim, quietLog())
	s.Init(0)

	sim.addTask(TaskInfo{ID: 1, RequiredCPUType: "x86", RequiredVMType: "linux"})
	s.NewTask(0, 1)
	var vmID VMId
	for id := range sim.vms {
		vmID = id
	}
	v := s.vms[vmID]

	s.beginMigration(v, 1)
	require.Contains(t, s.inFlight, vmID)
	require.False(t, s.machines[0].residents[vmID])

	sim.vms[vmID].Host = 1
	s.MigrationDone(20, vmID)

	require.NotContains(t, s.inFlight, vmID)
	require.True(t, s.machines[1].residents[vmID])
	require.NoError(t, s.checkInvariants())
}

// TestBurstDetector_TogglesTierAndRealignsSleepingMachines exercises spec
// §4.G end to end: enough arrivals in one window to cross BurstThreshold
// switch every sleeping PM to BurstSleepState.
func TestBurstDetector_TogglesTierAndRealignsSleepingMachines(t *testing.T) {
	sim := newFakeSim()
	sim.addPM(PMInfo{ID: 0, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100}})
	cfg := testConfig()
	cfg.BurstThreshold = 2
	cfg.BurstWindowLength = 100
	s := NewScheduler(cfg, sim, quietLog())
	s.Init(0)

	m := s.machines[0]
	s.beginSleep(m, cfg.NonBurstSleepState, 0)
	m.phase = PhaseOff // simulate transition completion without a real event

	for i := 0; i < 5; i++ {
		s.burst.onArrival(Time(i))
	}
	changed := s.burst.onArrival(Time(150)) // crosses the first window boundary
	require.True(t, changed, "5 arrivals in one window should exceed BurstThreshold=2")
	s.realignSleepTier(150)

	require.Equal(t, cfg.BurstSleepState, s.burst.currentTier())
	last := sim.stateCalls[len(sim.stateCalls)-1]
	require.Equal(t, PMId(0), last.PM)
	require.Equal(t, cfg.BurstSleepState, last.S)
}

// TestSLAWarning_ShedsFromOverloadedMachine verifies spec §4.H: a warning
// on a PM above SLAShedUtilThreshold triggers at least one migration
// attempt off it.
func TestSLAWarning_ShedsFromOverloadedMachine(t *testing.T) {
	sim := newFakeSim()
	sim.addPM(PMInfo{ID: 0, CPUType: "x86", NumCores: 2, MemoryBytes: 1 << 30, Performance: []float64{100}})
	sim.addPM(PMInfo{ID: 1, CPUType: "x86", NumCores: 2, MemoryBytes: 1 << 30, Performance: []float64{100}})
	cfg := testConfig()
	cfg.SLAShedUtilThreshold = 0.1
	s := NewScheduler(cfg, sim, quietLog())
	s.Init(0)

	sim.addTask(TaskInfo{ID: 1, RequiredCPUType: "x86", RequiredVMType: "linux", RequiredSLA: SLA0})
	s.NewTask(0, 1)
	sim.addTask(TaskInfo{ID: 2, RequiredCPUType: "x86", RequiredVMType: "linux", RequiredSLA: SLA0})
	s.NewTask(0, 2)

	s.SLAWarning(5, 1)

	require.Equal(t, int64(1), s.slaViolations[SLA0])
	require.NotEmpty(t, sim.migrateCalls, "pm0 is above SLAShedUtilThreshold, so at least one VM must be shed")
	require.Equal(t, PMId(1), sim.migrateCalls[0].Target)
}

// TestCheckInvariants_PanicsOnCorruption exercises the fatal path of spec
// §7: a hand-corrupted in-flight table (a VM both resident and in-flight)
// must panic when DebugInvariants is set.
func TestCheckInvariants_PanicsOnCorruption(t *testing.T) {
	sim := newFakeSim()
	sim.addPM(PMInfo{ID: 0, CPUType: "x86", NumCores: 4, MemoryBytes: 1 << 30, Performance: []float64{100}})
	s := NewScheduler(testConfig(), sim, quietLog())
	s.Init(0)

	s.vms[1] = &vm{id: 1, host: 0, tasks: map[TaskId]Priority{}}
	s.machines[0].addResident(1)
	s.inFlight[1] = 0

	require.Panics(t, func() { s.CheckInvariants() })
}
