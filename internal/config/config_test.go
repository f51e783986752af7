package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "content/events", cfg.Events.BankDir)
	assert.Equal(t, 15*time.Second, cfg.Events.MinTimeBetweenEvents)
	assert.Equal(t, 45*time.Second, cfg.Events.MaxTimeBetweenEvents)
	assert.Equal(t, 6, cfg.Events.MaxEventsPerSession)
	assert.Equal(t, 60.0, cfg.Events.WarningEscalationProgress)
	assert.Equal(t, 85.0, cfg.Events.CriticalEscalationProgress)
	assert.Equal(t, time.Second, cfg.Sim.TickInterval)
	assert.Equal(t, 3*time.Minute, cfg.Sim.SessionDuration)
	assert.Equal(t, "dungeon_delve", cfg.Sim.TaskType)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
  format: console
events:
  min_time_between_events: 5s
  max_time_between_events: 10s
  max_events_per_session: 3
sim:
  task_type: mine_expedition
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 5*time.Second, cfg.Events.MinTimeBetweenEvents)
	assert.Equal(t, 3, cfg.Events.MaxEventsPerSession)
	assert.Equal(t, "mine_expedition", cfg.Sim.TaskType)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_CollectsViolations(t *testing.T) {
	cfg := Config{
		Logging: LoggingConfig{Level: "loud", Format: "xml"},
		Events: EventsConfig{
			BankDir:                    "",
			MinTimeBetweenEvents:       10 * time.Second,
			MaxTimeBetweenEvents:       5 * time.Second,
			MaxEventsPerSession:        0,
			WarningEscalationProgress:  150,
			CriticalEscalationProgress: -1,
		},
		Sim: SimConfig{TickInterval: 0, SessionDuration: 0, TaskType: ""},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "events.bank_dir")
	assert.Contains(t, err.Error(), "events.max_time_between_events")
	assert.Contains(t, err.Error(), "events.max_events_per_session")
	assert.Contains(t, err.Error(), "sim.tick_interval")
	assert.Contains(t, err.Error(), "sim.task_type")
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: loud\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("events.max_events_per_session", 2)

	cfg, err := LoadFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Events.MaxEventsPerSession)
	assert.Equal(t, "info", cfg.Logging.Level)
}
