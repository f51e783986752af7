// Package config provides Viper-based configuration loading for the Delve
// event engine and its simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EventsConfig holds the event-generation pacing settings and the location of
// the authored event banks.
type EventsConfig struct {
	// BankDir is the directory of event-bank YAML files.
	BankDir string `mapstructure:"bank_dir"`
	// MinTimeBetweenEvents / MaxTimeBetweenEvents bound the pacing roll.
	MinTimeBetweenEvents time.Duration `mapstructure:"min_time_between_events"`
	MaxTimeBetweenEvents time.Duration `mapstructure:"max_time_between_events"`
	// MaxEventsPerSession caps events per task session.
	MaxEventsPerSession int `mapstructure:"max_events_per_session"`
	// WarningEscalationProgress / CriticalEscalationProgress are the
	// task-progress percentages past which heavier severities are preferred.
	WarningEscalationProgress  float64 `mapstructure:"warning_escalation_progress"`
	CriticalEscalationProgress float64 `mapstructure:"critical_escalation_progress"`
	// ScriptInstructionLimit bounds Lua condition evaluation; 0 = default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// SimConfig holds host-loop simulator settings.
type SimConfig struct {
	// TickInterval is how often the simulator polls the generator.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// SessionDuration is the simulated task length.
	SessionDuration time.Duration `mapstructure:"session_duration"`
	// TaskType is the task the simulated hero performs.
	TaskType string `mapstructure:"task_type"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Events  EventsConfig  `mapstructure:"events"`
	Sim     SimConfig     `mapstructure:"sim"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEvents(c.Events); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSim(c.Sim); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateEvents(e EventsConfig) error {
	var errs []string
	if e.BankDir == "" {
		errs = append(errs, "events.bank_dir must not be empty")
	}
	if e.MinTimeBetweenEvents < 0 {
		errs = append(errs, "events.min_time_between_events must not be negative")
	}
	if e.MaxTimeBetweenEvents < e.MinTimeBetweenEvents {
		errs = append(errs, "events.max_time_between_events must be >= events.min_time_between_events")
	}
	if e.MaxEventsPerSession < 1 {
		errs = append(errs, fmt.Sprintf("events.max_events_per_session must be >= 1, got %d", e.MaxEventsPerSession))
	}
	if e.WarningEscalationProgress < 0 || e.WarningEscalationProgress > 100 {
		errs = append(errs, "events.warning_escalation_progress must be in [0, 100]")
	}
	if e.CriticalEscalationProgress < 0 || e.CriticalEscalationProgress > 100 {
		errs = append(errs, "events.critical_escalation_progress must be in [0, 100]")
	}
	if e.CriticalEscalationProgress < e.WarningEscalationProgress {
		errs = append(errs, "events.critical_escalation_progress must be >= events.warning_escalation_progress")
	}
	if e.ScriptInstructionLimit < 0 {
		errs = append(errs, "events.script_instruction_limit must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSim(s SimConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, "sim.tick_interval must be positive")
	}
	if s.SessionDuration <= 0 {
		errs = append(errs, "sim.session_duration must be positive")
	}
	if s.TaskType == "" {
		errs = append(errs, "sim.task_type must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DELVE_ prefix
	v.SetEnvPrefix("DELVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("events.bank_dir", "content/events")
	v.SetDefault("events.min_time_between_events", "15s")
	v.SetDefault("events.max_time_between_events", "45s")
	v.SetDefault("events.max_events_per_session", 6)
	v.SetDefault("events.warning_escalation_progress", 60.0)
	v.SetDefault("events.critical_escalation_progress", 85.0)
	v.SetDefault("events.script_instruction_limit", 0)

	v.SetDefault("sim.tick_interval", "1s")
	v.SetDefault("sim.session_duration", "3m")
	v.SetDefault("sim.task_type", "dungeon_delve")
}
