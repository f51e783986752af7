package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/delve/internal/game/events"
)

func testContext() events.ConditionContext {
	return events.ConditionContext{
		Level:               4,
		CurrentHealth:       30,
		MaxHealth:           60,
		Injured:             true,
		Gold:                150,
		EquipmentFlags:      map[string]bool{"has_torch": true},
		TaskType:            "dungeon_delve",
		TaskProgressPercent: 72.5,
		EventsFired:         2,
	}
}

func TestConditionEvaluator_Eval(t *testing.T) {
	e := NewConditionEvaluator(0)

	cases := []struct {
		script string
		want   bool
	}{
		{"ctx.gold >= 100", true},
		{"ctx.gold >= 1000", false},
		{"ctx.injured", true},
		{"not ctx.injured", false},
		{"ctx.level >= 3 and ctx.health_percent <= 50", true},
		{"ctx.flags.has_torch", true},
		{"ctx.flags.has_rope", false},
		{"ctx.task_type == 'dungeon_delve'", true},
		{"ctx.task_progress > 70 and ctx.events_fired < 3", true},
	}
	for _, tc := range cases {
		got, err := e.Eval(tc.script, testContext())
		require.NoError(t, err, "script %q", tc.script)
		assert.Equal(t, tc.want, got, "script %q", tc.script)
	}
}

func TestConditionEvaluator_ParseError(t *testing.T) {
	e := NewConditionEvaluator(0)
	_, err := e.Eval("this is not lua", testContext())
	assert.Error(t, err)
}

// TestConditionEvaluator_InstructionLimit verifies a runaway script is cut
// off by the opcode budget instead of hanging the poll loop.
func TestConditionEvaluator_InstructionLimit(t *testing.T) {
	e := NewConditionEvaluator(1_000)
	_, err := e.Eval("(function() while true do end end)()", testContext())
	assert.Error(t, err)
}

// TestConditionEvaluator_SandboxedGlobals verifies dangerous globals are
// stripped from the VM.
func TestConditionEvaluator_SandboxedGlobals(t *testing.T) {
	e := NewConditionEvaluator(0)
	for _, script := range []string{
		"dofile('x') == nil",
		"loadfile('x') == nil",
		"require('os') == nil",
	} {
		_, err := e.Eval(script, testContext())
		assert.Error(t, err, "calling a stripped global must fail: %s", script)
	}

	// The globals themselves evaluate to nil.
	got, err := e.Eval("dofile == nil and loadfile == nil and require == nil", testContext())
	require.NoError(t, err)
	assert.True(t, got)
}

// TestConditionEvaluator_Isolation verifies one evaluation cannot leak state
// into the next.
func TestConditionEvaluator_Isolation(t *testing.T) {
	e := NewConditionEvaluator(0)

	got, err := e.Eval("(function() leak = 1; return leak end)() == 1", testContext())
	require.NoError(t, err)
	assert.True(t, got)

	got, err = e.Eval("leak == nil", testContext())
	require.NoError(t, err)
	assert.True(t, got)

	got, err = e.Eval("leak == nil", testContext())
	require.NoError(t, err)
	assert.True(t, got, "fresh VM per evaluation: no cross-call globals")
}
