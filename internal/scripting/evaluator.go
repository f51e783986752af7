package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/delve/internal/game/events"
)

// ConditionEvaluator evaluates Lua boolean expressions against a
// ConditionContext. Each evaluation runs in a fresh sandboxed VM, so one
// template's script can never observe another's state.
//
// Satisfies events.ConditionEvaluator.
type ConditionEvaluator struct {
	instLimit int
}

// NewConditionEvaluator creates an evaluator with the given per-evaluation
// instruction limit; 0 uses DefaultInstructionLimit.
func NewConditionEvaluator(instLimit int) *ConditionEvaluator {
	return &ConditionEvaluator{instLimit: instLimit}
}

// Eval runs script as a boolean expression with a `ctx` global table exposing
// the condition context:
//
//	ctx.level, ctx.current_health, ctx.max_health, ctx.health_percent,
//	ctx.injured, ctx.gold, ctx.task_type, ctx.task_progress,
//	ctx.events_fired, ctx.flags (table of name -> true)
//
// Lua truthiness applies: any value other than nil/false is true.
//
// Precondition: script must be a non-empty expression, e.g.
// "ctx.gold >= 100 and not ctx.injured".
// Postcondition: Returns the expression's truth value, or a non-nil error on
// parse failure, runtime failure, or instruction-limit exhaustion. Callers
// treat an error as "condition not satisfied".
func (e *ConditionEvaluator) Eval(script string, ctx events.ConditionContext) (bool, error) {
	L := newSandboxedState(e.instLimit)
	defer L.Close()

	L.SetGlobal("ctx", contextTable(L, ctx))

	if err := L.DoString("return (" + script + ")"); err != nil {
		return false, fmt.Errorf("evaluating condition script: %w", err)
	}
	result := L.Get(-1)
	return result != lua.LNil && result != lua.LFalse, nil
}

// contextTable converts ctx into the Lua table exposed as the `ctx` global.
func contextTable(L *lua.LState, ctx events.ConditionContext) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "level", lua.LNumber(ctx.Level))
	L.SetField(t, "current_health", lua.LNumber(ctx.CurrentHealth))
	L.SetField(t, "max_health", lua.LNumber(ctx.MaxHealth))
	L.SetField(t, "health_percent", lua.LNumber(ctx.HealthPercent()))
	L.SetField(t, "injured", lua.LBool(ctx.Injured))
	L.SetField(t, "gold", lua.LNumber(ctx.Gold))
	L.SetField(t, "task_type", lua.LString(ctx.TaskType))
	L.SetField(t, "task_progress", lua.LNumber(ctx.TaskProgressPercent))
	L.SetField(t, "events_fired", lua.LNumber(ctx.EventsFired))

	flags := L.NewTable()
	for name, on := range ctx.EquipmentFlags {
		if on {
			L.SetField(flags, name, lua.LTrue)
		}
	}
	L.SetField(t, "flags", flags)
	return t
}
