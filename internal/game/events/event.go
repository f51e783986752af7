package events

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/delve/internal/game/rng"
)

// Event is a concrete, instantiated occurrence of a template: one message
// chosen, every declared effect range rolled, placeholders resolved. Events
// are immutable once created except for Acknowledged, which the UI layer
// flips when the player has seen the event.
type Event struct {
	// ID is a fresh UUID assigned at instantiation.
	ID string
	// TemplateID is the originating template's key.
	TemplateID string
	Severity   Severity
	Category   string
	// Message is the final text with all {kind} placeholders substituted.
	Message string
	// Effects holds the rolled value for each effect kind the template
	// declared. The host applies these as deltas to external state.
	Effects map[EffectKind]int
	// Timestamp is the clock reading at the moment the event fired.
	Timestamp time.Time
	// Acknowledged is mutated externally by the UI, never by this package.
	Acknowledged bool
}

// instantiate rolls a concrete Event from t: picks one message uniformly,
// rolls each declared effect range (uniform, inclusive), and substitutes each
// rolled value into any matching {kind} token in the message.
//
// Precondition: t must have passed Validate; src must be non-nil.
// Postcondition: every effect kind declared by t has a rolled value within
// its declared range, and no declared kind's {kind} token survives in
// Message.
func instantiate(t *EventTemplate, now time.Time, src rng.Source) *Event {
	message := t.Messages[0]
	if len(t.Messages) > 1 {
		message = t.Messages[src.Intn(len(t.Messages))]
	}

	effects := make(map[EffectKind]int, len(t.Effects))
	for kind, r := range t.Effects {
		value := rng.IntBetween(src, r.Min, r.Max)
		effects[kind] = value
		message = strings.ReplaceAll(message, "{"+string(kind)+"}", strconv.Itoa(value))
	}

	return &Event{
		ID:         uuid.NewString(),
		TemplateID: t.ID,
		Severity:   t.Severity,
		Category:   t.Category,
		Message:    message,
		Effects:    effects,
		Timestamp:  now,
	}
}
