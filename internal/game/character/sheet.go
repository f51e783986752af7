// Package character defines the idle hero's progression sheet. The event
// engine never mutates it; the host loop applies rolled event effects through
// the narrow setter methods here and feeds eligibility checks with
// ConditionSnapshot.
package character

import "github.com/cory-johannsen/delve/internal/game/events"

// xpPerLevel is the flat experience required to advance one level.
const xpPerLevel = 100

// Sheet is the hero's mutable progression state.
//
// Invariant: 0 <= CurrentHP <= MaxHP; Gold >= 0; Level >= 1;
// 5 <= SuccessChance <= 95.
type Sheet struct {
	Name       string
	Level      int
	Experience int
	Gold       int
	MaxHP      int
	CurrentHP  int
	Injured    bool
	// SuccessChance is the hero's task success probability in percent.
	SuccessChance int
	// Flags holds equipment and story flags ("has_torch", "found_map").
	Flags map[string]bool
}

// NewSheet creates a level-1 hero with full health and default odds.
func NewSheet(name string) *Sheet {
	return &Sheet{
		Name:          name,
		Level:         1,
		Gold:          25,
		MaxHP:         50,
		CurrentHP:     50,
		SuccessChance: 70,
		Flags:         make(map[string]bool),
	}
}

// AddGold applies a gold delta, flooring at zero.
//
// Postcondition: Gold >= 0.
func (s *Sheet) AddGold(delta int) {
	s.Gold += delta
	if s.Gold < 0 {
		s.Gold = 0
	}
}

// ApplyHealthDelta applies a health delta, clamping to [0, MaxHP].
//
// Postcondition: 0 <= CurrentHP <= MaxHP.
func (s *Sheet) ApplyHealthDelta(delta int) {
	s.CurrentHP += delta
	if s.CurrentHP < 0 {
		s.CurrentHP = 0
	}
	if s.CurrentHP > s.MaxHP {
		s.CurrentHP = s.MaxHP
	}
}

// ApplyXP grants experience and resolves any level-ups, carrying surplus XP
// across each level. Every level gained raises MaxHP by 10 and heals the
// difference.
//
// Precondition: amount >= 0.
// Postcondition: Returns the number of levels gained (may be 0).
func (s *Sheet) ApplyXP(amount int) int {
	s.Experience += amount
	levels := 0
	for s.Experience >= xpPerLevel {
		s.Experience -= xpPerLevel
		s.Level++
		s.MaxHP += 10
		s.CurrentHP += 10
		levels++
	}
	return levels
}

// ApplySuccessChanceDelta shifts the task success probability, clamped to
// [5, 95] so a run is never a guaranteed success or failure.
//
// Postcondition: 5 <= SuccessChance <= 95.
func (s *Sheet) ApplySuccessChanceDelta(delta int) {
	s.SuccessChance += delta
	if s.SuccessChance < 5 {
		s.SuccessChance = 5
	}
	if s.SuccessChance > 95 {
		s.SuccessChance = 95
	}
}

// SetInjured records the result of an external injury roll.
func (s *Sheet) SetInjured(injured bool) {
	s.Injured = injured
}

// SetFlag sets or clears an equipment/story flag.
func (s *Sheet) SetFlag(name string, on bool) {
	if s.Flags == nil {
		s.Flags = make(map[string]bool)
	}
	s.Flags[name] = on
}

// ConditionSnapshot builds the read-only per-poll context the event engine
// evaluates eligibility conditions against. The flag map is copied so the
// engine can never observe later sheet mutation mid-poll.
func (s *Sheet) ConditionSnapshot(taskType string, taskProgressPercent float64, eventsFired int) events.ConditionContext {
	flags := make(map[string]bool, len(s.Flags))
	for name, on := range s.Flags {
		flags[name] = on
	}
	return events.ConditionContext{
		Level:               s.Level,
		CurrentHealth:       s.CurrentHP,
		MaxHealth:           s.MaxHP,
		Injured:             s.Injured,
		Gold:                s.Gold,
		EquipmentFlags:      flags,
		TaskType:            taskType,
		TaskProgressPercent: taskProgressPercent,
		EventsFired:         eventsFired,
	}
}
