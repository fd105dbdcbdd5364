// Package config loads a run's engine and simulation-host configuration
// from YAML and environment variables, layered with spf13/viper the way
// the pack's config packages do (grounded on Galev01-LimiQuantix's
// internal/config/config.go). CLI flag overrides are applied on top of
// the loaded RunConfig by cmd/root.go, not by this package.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/energysched/energysched/internal/engine"
	"github.com/energysched/energysched/internal/simhost"
)

// RunConfig is the top-level file a run is configured from: the core's
// policy knobs plus the reference simulator's world/workload knobs.
type RunConfig struct {
	Engine  engine.EngineConfig `mapstructure:"engine"`
	SimHost simhost.Config      `mapstructure:"simhost"`
	Logging LoggingConfig       `mapstructure:"logging"`
}

// LoggingConfig holds the logging settings loaded with a run's config.
// cmd/root.go sets the log level from its --log-level flag and does not
// read these fields.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configPath (if non-empty) plus ENERGYSCHED_-prefixed
// environment variables into a RunConfig seeded with DefaultRunConfig,
// mirroring the teacher's Load/setDefaults split.
func Load(configPath string) (*RunConfig, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("energysched")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ENERGYSCHED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := DefaultRunConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return &cfg, nil
}

// DefaultRunConfig returns the configuration a run uses when no file or
// environment override is present.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Engine:  engine.DefaultEngineConfig(),
		SimHost: simhost.DefaultConfig(),
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// setDefaults registers DefaultRunConfig's values with v so that a
// partially-specified YAML file (or none at all) still unmarshals into a
// complete, valid RunConfig. Viper's own struct-default handling only
// covers primitive leaves, not the nested weight/topology structs, so
// Load unmarshals onto a DefaultRunConfig value rather than a zero value
// to keep those defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	def := engine.DefaultEngineConfig()
	v.SetDefault("engine.sleep_state", int(def.SleepState))
	v.SetDefault("engine.min_pm_fraction_on", def.MinPMFractionOn)
	v.SetDefault("engine.consolidation_util_threshold", def.ConsolidationUtilThreshold)
	v.SetDefault("engine.sla_shed_util_threshold", def.SLAShedUtilThreshold)
	v.SetDefault("engine.burst_window_length", int64(def.BurstWindowLength))
	v.SetDefault("engine.burst_ring_length", def.BurstRingLength)
	v.SetDefault("engine.burst_threshold", def.BurstThreshold)
	v.SetDefault("engine.quiet_threshold", def.QuietThreshold)
	v.SetDefault("engine.quiet_windows", def.QuietWindows)
	v.SetDefault("engine.downclock_util_threshold", def.DownclockUtilThreshold)
	v.SetDefault("engine.upclock_util_threshold", def.UpclockUtilThreshold)
	v.SetDefault("engine.overload_core_fill_threshold", def.OverloadCoreFillThreshold)
	v.SetDefault("engine.overload_tasks_per_vm_threshold", def.OverloadTasksPerVMThreshold)
	v.SetDefault("engine.overload_off_ratio_threshold", def.OverloadOffRatioThreshold)
	v.SetDefault("engine.debug_invariants", def.DebugInvariants)
}
