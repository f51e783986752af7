// Package events implements the random-event pacing engine for timed idle
// tasks: an immutable, indexed catalog of authored event templates and a
// session-scoped generator that decides, on each host poll, whether an event
// fires, which template it comes from, and what its rolled effects are.
package events

import (
	"fmt"
	"strings"
)

// Severity is the narrative/gameplay weight class of an event. The renderer
// maps it to a visual cue; the generator may prefer higher severities deeper
// into a task.
type Severity string

const (
	SeverityFlavor   Severity = "flavor"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the recognized severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityFlavor, SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Severities lists all recognized severities in ascending weight order.
func Severities() []Severity {
	return []Severity{SeverityFlavor, SeverityInfo, SeverityWarning, SeverityCritical}
}

// EffectKind names one numeric effect a template may roll. The host applies
// the rolled value as a delta to external character/progression state; this
// package never mutates that state itself.
type EffectKind string

const (
	EffectGold          EffectKind = "gold"
	EffectHealth        EffectKind = "health"
	EffectXP            EffectKind = "xp"
	EffectSuccessChance EffectKind = "successChance"
)

// Known reports whether k is a recognized effect kind. Template validation
// rejects unknown kinds at load time.
func (k EffectKind) Known() bool {
	switch k {
	case EffectGold, EffectHealth, EffectXP, EffectSuccessChance:
		return true
	}
	return false
}

// EffectRange is the inclusive numeric range an effect kind is rolled from
// at event instantiation time.
type EffectRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// EventTemplate is the static, author-defined blueprint for a possible event.
// Templates are immutable once loaded; the catalog owns them.
//
// Invariant: ID is unique across a catalog; Weight > 0 for any template
// expected to be selectable.
type EventTemplate struct {
	// ID is the unique template key, e.g. "loot_gold_small".
	ID string `yaml:"id"`
	// Severity drives presentation weight and optional selection preference.
	Severity Severity `yaml:"severity"`
	// Category is a domain tag (loot, hazard, combat, fortune) used for
	// filtering and analytics, not gameplay gating.
	Category string `yaml:"category"`
	// Messages holds one or more message templates with {kind} placeholders;
	// one is chosen uniformly at instantiation.
	Messages []string `yaml:"messages"`
	// Effects maps each declared effect kind to its roll range.
	Effects map[EffectKind]EffectRange `yaml:"effects"`
	// Weight is the relative selection probability within the eligible pool.
	Weight float64 `yaml:"weight"`
	// ApplicableTasks restricts the template to specific task types.
	// An empty set means "applicable to all task types".
	ApplicableTasks []string `yaml:"applicable_tasks"`
	// Repeatable controls whether the template may fire more than once per
	// session.
	Repeatable bool `yaml:"repeatable"`
	// Conditions is an optional eligibility predicate; nil means always
	// satisfied.
	Conditions *Conditions `yaml:"conditions"`
}

// IsApplicableTo reports whether the template may fire during a task of the
// given type. The empty ApplicableTasks set means "all task types" — this is
// a load-bearing convention, implemented here as an explicit predicate rather
// than a fallthrough.
func (t *EventTemplate) IsApplicableTo(taskType string) bool {
	if len(t.ApplicableTasks) == 0 {
		return true
	}
	for _, task := range t.ApplicableTasks {
		if task == taskType {
			return true
		}
	}
	return false
}

// Validate checks the template's structural invariants.
//
// Postcondition: Returns nil if the template is well-formed, or an error
// describing all violations.
func (t *EventTemplate) Validate() error {
	var errs []string

	if t.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if !t.Severity.Valid() {
		errs = append(errs, fmt.Sprintf("severity must be one of [flavor, info, warning, critical], got %q", t.Severity))
	}
	if t.Category == "" {
		errs = append(errs, "category must not be empty")
	}
	if len(t.Messages) == 0 {
		errs = append(errs, "messages must not be empty")
	}
	for i, m := range t.Messages {
		if strings.TrimSpace(m) == "" {
			errs = append(errs, fmt.Sprintf("messages[%d] must not be blank", i))
		}
	}
	if t.Weight <= 0 {
		errs = append(errs, fmt.Sprintf("weight must be > 0, got %v", t.Weight))
	}
	for kind, r := range t.Effects {
		if !kind.Known() {
			errs = append(errs, fmt.Sprintf("unknown effect kind %q", kind))
		}
		if r.Min > r.Max {
			errs = append(errs, fmt.Sprintf("effect %q range inverted: min %d > max %d", kind, r.Min, r.Max))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("template %q invalid: %s", t.ID, strings.Join(errs, "; "))
	}
	return nil
}
