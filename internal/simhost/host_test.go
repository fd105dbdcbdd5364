package simhost

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/energysched/energysched/internal/engine"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// TestSimulator_EndToEndRun drives a short simulation through the real
// engine.Scheduler and checks the run completes, seeds every configured
// PM, and produces a coherent final report.
func TestSimulator_EndToEndRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Horizon = 200_000
	cfg.Seed = 42

	host := New(cfg, logrus.NewEntry(quietLogger()))

	engCfg := engine.DefaultEngineConfig()
	engCfg.DebugInvariants = true
	sched := engine.NewScheduler(engCfg, host, quietLogger())
	host.Attach(sched)

	require.NotPanics(t, func() { host.Run() })

	report := host.FinalReport()
	require.Equal(t, 12, report.TotalMachines) // 8 x86 + 4 arm from DefaultConfig
	require.Greater(t, report.TotalTasks, 0, "the workload generator should have produced arrivals within the horizon")
}

// TestSimulator_SeedsPMIdsContiguouslyFromZero verifies the PM id
// convention engine.Scheduler.Init relies on: ids run 0..N-1 with no
// gaps, since Init iterates PMId(i) for i in [0, MachineGetTotal()).
func TestSimulator_SeedsPMIdsContiguouslyFromZero(t *testing.T) {
	cfg := DefaultConfig()
	host := New(cfg, nil)

	total := host.MachineGetTotal()
	for i := 0; i < total; i++ {
		info := host.MachineGetInfo(engine.PMId(i))
		require.NotEqual(t, engine.PMId(engine.Invalid), info.ID, "pm id %d must be seeded", i)
	}
}
