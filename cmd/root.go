package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/energysched/energysched/internal/config"
	"github.com/energysched/energysched/internal/engine"
	"github.com/energysched/energysched/internal/simhost"
	"github.com/energysched/energysched/internal/telemetry"
)

var (
	cfgFile         string
	logLevel        string
	horizon         int64
	seed            int64
	redisAddr       string
	redisChannel    string
	debugInvariants bool
)

var rootCmd = &cobra.Command{
	Use:   "energysched",
	Short: "Event-driven energy-aware cloud workload scheduler",
	Long: `energysched runs a discrete-event simulation of an energy-aware
cloud scheduler: physical machines power up and down, VMs host tasks,
and a placement/consolidation core reacts to arrivals, completions and
SLA pressure to minimize energy while honoring service-level targets.`,
	RunE: runSimulation,
}

// Execute is the entrypoint main.go delegates to.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().Int64Var(&horizon, "horizon", 0, "simulation horizon in microseconds (0 = use config)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "workload RNG seed (0 = use config)")
	rootCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for telemetry publishing (empty disables telemetry)")
	rootCmd.Flags().StringVar(&redisChannel, "redis-channel", "energysched:snapshots", "Redis pub/sub channel for telemetry snapshots")
	rootCmd.Flags().BoolVar(&debugInvariants, "debug-invariants", false, "re-check core invariants after every event (slow, for tests)")
}

func runSimulation(_ *cobra.Command, _ []string) error {
	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(level)

	runCfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if horizon > 0 {
		runCfg.SimHost.Horizon = engine.Time(horizon)
	}
	if seed != 0 {
		runCfg.SimHost.Seed = seed
	}
	if debugInvariants {
		runCfg.Engine.DebugInvariants = true
	}

	var publisher *telemetry.Publisher
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		publisher = telemetry.NewPublisher(client, redisChannel, log.WithField("run", "energysched"))
		defer publisher.Close()
		log.Infof("telemetry: publishing snapshots to %s on channel %q (run %s)", redisAddr, redisChannel, publisher.RunID())
	}

	host := simhost.New(runCfg.SimHost, log.WithField("component", "simhost"))
	if publisher != nil {
		host.OnSnapshot = publisher.Publish
	}

	sched := engine.NewScheduler(runCfg.Engine, host, log)
	host.Attach(sched)

	start := time.Now()
	host.Run()
	elapsed := time.Since(start)

	report := host.FinalReport()
	log.Infof("run complete in %s wall-clock (%d simulated machines, %d tasks)",
		elapsed.Round(time.Millisecond), report.TotalMachines, report.TotalTasks)
	fmt.Printf("Machines: %d total, %d ON at end\n", report.TotalMachines, report.MachinesOnAtEnd)
	fmt.Printf("Cluster energy: %.2f watt-seconds\n", report.ClusterEnergyWs)
	for _, class := range []engine.SLAClass{engine.SLA0, engine.SLA1, engine.SLA2, engine.SLA3} {
		fmt.Printf("%s met: %.2f%%\n", class, report.SLAMetFraction[class]*100)
	}

	return nil
}
