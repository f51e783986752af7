package events

// ConditionContext is the per-poll snapshot of external character and task
// state that eligibility conditions are evaluated against. It is supplied by
// the host and read-only to this package.
type ConditionContext struct {
	Level          int
	CurrentHealth  int
	MaxHealth      int
	Injured        bool
	Gold           int
	EquipmentFlags map[string]bool
	TaskType       string
	// TaskProgressPercent is the host task's completion in [0, 100].
	TaskProgressPercent float64
	// EventsFired is the number of events already fired this session.
	EventsFired int
}

// HealthPercent returns current health as a percentage of max health;
// 0 if MaxHealth <= 0.
func (c ConditionContext) HealthPercent() float64 {
	if c.MaxHealth <= 0 {
		return 0
	}
	return float64(c.CurrentHealth) / float64(c.MaxHealth) * 100
}

// ConditionEvaluator evaluates an author-supplied script condition against a
// context. Implemented by the scripting package; the catalog only sees this
// interface.
type ConditionEvaluator interface {
	// Eval returns the boolean result of the script, or an error if the
	// script fails to parse or execute.
	Eval(script string, ctx ConditionContext) (bool, error)
}

// Conditions is the sparse eligibility predicate a template may carry.
// Every field is optional; an absent field is vacuously true. A nil
// *Conditions is always satisfied.
type Conditions struct {
	// MinLevel / MaxLevel bound the character level.
	MinLevel *int `yaml:"min_level"`
	MaxLevel *int `yaml:"max_level"`
	// MinHealthPercent requires currentHealth/maxHealth*100 >= threshold.
	MinHealthPercent *float64 `yaml:"min_health_percent"`
	// MaxHealthPercent requires currentHealth/maxHealth*100 <= threshold.
	MaxHealthPercent *float64 `yaml:"max_health_percent"`
	// RequiresInjured matches the context's injured flag exactly.
	RequiresInjured *bool `yaml:"requires_injured"`
	// MinGold requires the character to carry at least this much gold.
	MinGold *int `yaml:"min_gold"`
	// RequiredFlags must all be set in the context's equipment flags.
	RequiredFlags []string `yaml:"required_flags"`
	// MinTaskProgress requires task progress percent >= threshold.
	MinTaskProgress *float64 `yaml:"min_task_progress"`
	// MaxEventsFired requires the session's fired-event count <= threshold.
	MaxEventsFired *int `yaml:"max_events_fired"`
	// Script is an optional Lua boolean expression over a `ctx` table,
	// e.g. "ctx.gold >= 100 and not ctx.injured".
	Script string `yaml:"script"`
}

// Satisfied evaluates the predicate against ctx. It never panics: a script
// error, a missing evaluator, or a degenerate context (MaxHealth == 0 under a
// health-percent floor) degrades to "not satisfied" rather than halting the
// poll loop.
func (c *Conditions) Satisfied(ctx ConditionContext, eval ConditionEvaluator) bool {
	if c == nil {
		return true
	}
	if c.MinLevel != nil && ctx.Level < *c.MinLevel {
		return false
	}
	if c.MaxLevel != nil && ctx.Level > *c.MaxLevel {
		return false
	}
	if c.MinHealthPercent != nil && ctx.HealthPercent() < *c.MinHealthPercent {
		return false
	}
	if c.MaxHealthPercent != nil && ctx.HealthPercent() > *c.MaxHealthPercent {
		return false
	}
	if c.RequiresInjured != nil && ctx.Injured != *c.RequiresInjured {
		return false
	}
	if c.MinGold != nil && ctx.Gold < *c.MinGold {
		return false
	}
	for _, flag := range c.RequiredFlags {
		if !ctx.EquipmentFlags[flag] {
			return false
		}
	}
	if c.MinTaskProgress != nil && ctx.TaskProgressPercent < *c.MinTaskProgress {
		return false
	}
	if c.MaxEventsFired != nil && ctx.EventsFired > *c.MaxEventsFired {
		return false
	}
	if c.Script != "" {
		if eval == nil {
			return false
		}
		ok, err := eval.Eval(c.Script, ctx)
		if err != nil {
			return false
		}
		return ok
	}
	return true
}
