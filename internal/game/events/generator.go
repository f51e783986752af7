package events

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/delve/internal/game/rng"
)

// Enumerable "no event this tick" outcomes of TryGenerateEvent. The host
// matches them with errors.Is and decides whether to log, ignore, or simply
// retry next tick; none of them is fatal.
var (
	// ErrNoSession is returned when polling outside a session.
	ErrNoSession = errors.New("no active session")
	// ErrPaused is returned while generation is paused.
	ErrPaused = errors.New("generation is paused")
	// ErrSessionCapReached is returned once the per-session event cap is hit.
	ErrSessionCapReached = errors.New("maximum events per session reached")
	// ErrNotYetTime is returned while the pacing window has not elapsed.
	ErrNotYetTime = errors.New("not yet time for next event")
	// ErrNoEligibleTemplates is returned when the weighted draw has an empty pool.
	ErrNoEligibleTemplates = errors.New("no eligible templates")
)

// SessionPhase is the generator's lifecycle phase.
type SessionPhase string

const (
	PhaseIdle   SessionPhase = "idle"
	PhaseActive SessionPhase = "active"
	PhasePaused SessionPhase = "paused"
)

// GeneratorConfig holds the pacing and biasing knobs of the generator. All
// fields have defaults; see DefaultGeneratorConfig.
type GeneratorConfig struct {
	// MinTimeBetweenEvents / MaxTimeBetweenEvents bound the uniform pacing
	// roll between consecutive events.
	MinTimeBetweenEvents time.Duration
	MaxTimeBetweenEvents time.Duration
	// MaxEventsPerSession caps how many events one session may accumulate.
	MaxEventsPerSession int
	// WarningEscalationProgress is the task-progress percent past which the
	// selection hint prefers warning-severity templates.
	WarningEscalationProgress float64
	// CriticalEscalationProgress is the task-progress percent past which the
	// selection hint prefers critical-severity templates.
	CriticalEscalationProgress float64
}

// DefaultGeneratorConfig returns the documented default pacing configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MinTimeBetweenEvents:       15 * time.Second,
		MaxTimeBetweenEvents:       45 * time.Second,
		MaxEventsPerSession:        6,
		WarningEscalationProgress:  60,
		CriticalEscalationProgress: 85,
	}
}

// Validate checks the configuration invariants.
//
// Postcondition: Returns nil if the configuration is valid, or an error
// describing all violations.
func (c GeneratorConfig) Validate() error {
	var errs []string

	if c.MinTimeBetweenEvents < 0 {
		errs = append(errs, "min_time_between_events must not be negative")
	}
	if c.MaxTimeBetweenEvents < c.MinTimeBetweenEvents {
		errs = append(errs, "max_time_between_events must be >= min_time_between_events")
	}
	if c.MaxEventsPerSession < 1 {
		errs = append(errs, fmt.Sprintf("max_events_per_session must be >= 1, got %d", c.MaxEventsPerSession))
	}
	if c.WarningEscalationProgress < 0 || c.WarningEscalationProgress > 100 {
		errs = append(errs, "warning_escalation_progress must be in [0, 100]")
	}
	if c.CriticalEscalationProgress < 0 || c.CriticalEscalationProgress > 100 {
		errs = append(errs, "critical_escalation_progress must be in [0, 100]")
	}
	if c.CriticalEscalationProgress < c.WarningEscalationProgress {
		errs = append(errs, "critical_escalation_progress must be >= warning_escalation_progress")
	}

	if len(errs) > 0 {
		return fmt.Errorf("generator config invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ConfigPatch is a partial GeneratorConfig; nil fields are left unchanged by
// UpdateConfig.
type ConfigPatch struct {
	MinTimeBetweenEvents       *time.Duration
	MaxTimeBetweenEvents       *time.Duration
	MaxEventsPerSession        *int
	WarningEscalationProgress  *float64
	CriticalEscalationProgress *float64
}

// GeneratorState is a read-only snapshot of the generator. All collections
// are defensive copies; mutating them never affects the generator.
type GeneratorState struct {
	Phase SessionPhase
	// Events are the events fired this session, in firing order. The Event
	// pointers are shared (the UI acknowledges through them) but the slice
	// is a fresh allocation.
	Events []*Event
	// FiredTemplateIDs lists the non-repeatable template IDs barred for the
	// rest of the session, sorted.
	FiredTemplateIDs []string
	// LastEventAt is when the last event fired (or the session started).
	LastEventAt time.Time
	// NextEventAt is when the next event becomes due; zero when idle.
	NextEventAt time.Time
	Config      GeneratorConfig
}

// Generator owns one session's mutable event state and decides, on each host
// poll, whether an event fires. It performs no internal scheduling and never
// blocks; the host polls TryGenerateEvent once per tick.
//
// Not safe for concurrent mutation; the host's single control loop must
// serialise calls.
type Generator struct {
	catalog *Catalog
	cfg     GeneratorConfig
	clock   Clock
	src     rng.Source
	logger  *zap.Logger

	phase         SessionPhase
	sessionEvents []*Event
	firedIDs      map[string]struct{}
	lastEventAt   time.Time
	nextEventAt   time.Time
}

// NewGenerator creates an idle Generator over catalog.
//
// Precondition: catalog, clock, and src must be non-nil; cfg must validate.
// logger may be nil, in which case a no-op logger is used.
func NewGenerator(catalog *Catalog, cfg GeneratorConfig, clock Clock, src rng.Source, logger *zap.Logger) (*Generator, error) {
	if catalog == nil {
		return nil, errors.New("catalog must not be nil")
	}
	if clock == nil {
		return nil, errors.New("clock must not be nil")
	}
	if src == nil {
		return nil, errors.New("randomness source must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		catalog:  catalog,
		cfg:      cfg,
		clock:    clock,
		src:      src,
		logger:   logger,
		phase:    PhaseIdle,
		firedIDs: make(map[string]struct{}),
	}, nil
}

// StartSession begins a fresh session: clears accumulated events and the
// fired-template set, stamps the session start, and rolls the first pacing
// window. Starting over an unfinished session discards its events.
//
// Postcondition: phase is active; SessionEvents() is empty; the next event
// is due between MinTimeBetweenEvents and MaxTimeBetweenEvents from now.
func (g *Generator) StartSession() {
	if g.phase != PhaseIdle && len(g.sessionEvents) > 0 {
		g.logger.Warn("starting session over unfinished session",
			zap.Int("discarded_events", len(g.sessionEvents)),
		)
	}
	now := g.clock.Now()
	g.phase = PhaseActive
	g.sessionEvents = nil
	g.firedIDs = make(map[string]struct{})
	g.lastEventAt = now
	g.nextEventAt = now.Add(g.rollPacing())
	g.logger.Debug("session started", zap.Time("next_event_at", g.nextEventAt))
}

// Pause suppresses generation while retaining all session state. Timers are
// neither advanced nor reset. No-op unless the session is active.
func (g *Generator) Pause() {
	if g.phase == PhaseActive {
		g.phase = PhasePaused
	}
}

// Resume re-enables generation after Pause. No-op unless paused.
func (g *Generator) Resume() {
	if g.phase == PhasePaused {
		g.phase = PhaseActive
	}
}

// EndSession ends the session and returns the accumulated events in firing
// order, clearing all session state.
//
// Postcondition: phase is idle; SessionEvents() is empty; NextEventAt is
// zero. Returns nil when no session was active.
func (g *Generator) EndSession() []*Event {
	fired := g.sessionEvents
	g.phase = PhaseIdle
	g.sessionEvents = nil
	g.firedIDs = make(map[string]struct{})
	g.nextEventAt = time.Time{}
	g.logger.Debug("session ended", zap.Int("events", len(fired)))
	return fired
}

// Reset is a hard reset from any phase back to a fresh idle state, also
// zeroing the last-event stamp. Always safe; discards in-flight pacing state.
func (g *Generator) Reset() {
	g.phase = PhaseIdle
	g.sessionEvents = nil
	g.firedIDs = make(map[string]struct{})
	g.lastEventAt = time.Time{}
	g.nextEventAt = time.Time{}
}

// TryGenerateEvent is the once-per-tick poll: it decides whether an event
// fires now for the given task, and if so draws a weighted-random eligible
// template, instantiates it, records it, and rolls the next pacing window.
//
// The context's EventsFired field is overwritten with the generator's own
// count before condition evaluation; the generator is authoritative for it.
//
// Postcondition: On success the returned event is appended to the session in
// firing order and, for non-repeatable templates, the template is barred for
// the rest of the session. On failure the error is one of ErrNoSession,
// ErrPaused, ErrSessionCapReached, ErrNotYetTime, or ErrNoEligibleTemplates
// and no state changes.
func (g *Generator) TryGenerateEvent(taskType string, ctx ConditionContext) (*Event, error) {
	switch g.phase {
	case PhaseIdle:
		return nil, ErrNoSession
	case PhasePaused:
		return nil, ErrPaused
	}
	if len(g.sessionEvents) >= g.cfg.MaxEventsPerSession {
		return nil, ErrSessionCapReached
	}
	now := g.clock.Now()
	if now.Before(g.nextEventAt) {
		return nil, ErrNotYetTime
	}

	ctx.EventsFired = len(g.sessionEvents)
	exclude := make(map[string]struct{}, len(g.firedIDs))
	for id := range g.firedIDs {
		exclude[id] = struct{}{}
	}

	tmpl := g.catalog.SelectRandom(SelectionCriteria{
		TaskType:           taskType,
		Context:            ctx,
		ExcludeTemplateIDs: exclude,
		PreferredSeverity:  g.severityHint(ctx.TaskProgressPercent),
	}, g.src)
	if tmpl == nil {
		return nil, ErrNoEligibleTemplates
	}

	ev := instantiate(tmpl, now, g.src)
	g.sessionEvents = append(g.sessionEvents, ev)
	if !tmpl.Repeatable {
		g.firedIDs[tmpl.ID] = struct{}{}
	}
	g.lastEventAt = now
	g.nextEventAt = now.Add(g.rollPacing())

	g.logger.Debug("event fired",
		zap.String("event_id", ev.ID),
		zap.String("template_id", ev.TemplateID),
		zap.String("severity", string(ev.Severity)),
		zap.String("task_type", taskType),
		zap.Time("next_event_at", g.nextEventAt),
	)
	return ev, nil
}

// UpdateConfig merges patch into the active configuration without touching
// session state. The merged configuration must validate or the update is
// rejected wholesale.
func (g *Generator) UpdateConfig(patch ConfigPatch) error {
	merged := g.cfg
	if patch.MinTimeBetweenEvents != nil {
		merged.MinTimeBetweenEvents = *patch.MinTimeBetweenEvents
	}
	if patch.MaxTimeBetweenEvents != nil {
		merged.MaxTimeBetweenEvents = *patch.MaxTimeBetweenEvents
	}
	if patch.MaxEventsPerSession != nil {
		merged.MaxEventsPerSession = *patch.MaxEventsPerSession
	}
	if patch.WarningEscalationProgress != nil {
		merged.WarningEscalationProgress = *patch.WarningEscalationProgress
	}
	if patch.CriticalEscalationProgress != nil {
		merged.CriticalEscalationProgress = *patch.CriticalEscalationProgress
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	g.cfg = merged
	return nil
}

// State returns a defensive snapshot of the generator.
func (g *Generator) State() GeneratorState {
	fired := make([]string, 0, len(g.firedIDs))
	for id := range g.firedIDs {
		fired = append(fired, id)
	}
	sort.Strings(fired)
	return GeneratorState{
		Phase:            g.phase,
		Events:           g.SessionEvents(),
		FiredTemplateIDs: fired,
		LastEventAt:      g.lastEventAt,
		NextEventAt:      g.nextEventAt,
		Config:           g.cfg,
	}
}

// SessionEvents returns a copy of the events fired this session, in firing
// order. Mutating the returned slice never affects the generator.
func (g *Generator) SessionEvents() []*Event {
	out := make([]*Event, len(g.sessionEvents))
	copy(out, g.sessionEvents)
	return out
}

// rollPacing returns a uniform duration in the configured pacing window.
func (g *Generator) rollPacing() time.Duration {
	return rng.DurationBetween(g.src, g.cfg.MinTimeBetweenEvents, g.cfg.MaxTimeBetweenEvents)
}

// severityHint derives the preferred-severity pacing bias from task progress:
// deeper into a task, prefer heavier events. The catalog falls back to the
// full eligible pool when nothing matches, so the hint never starves a draw.
func (g *Generator) severityHint(progress float64) Severity {
	switch {
	case progress >= g.cfg.CriticalEscalationProgress:
		return SeverityCritical
	case progress >= g.cfg.WarningEscalationProgress:
		return SeverityWarning
	default:
		return ""
	}
}
