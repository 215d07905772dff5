package schema

import (
	"github.com/macielcr7/exa-chat-notifier/internal/domain"
	"github.com/macielcr7/exa-chat-notifier/internal/ports"
)

// DefaultImportantEvents is the event-identifier set treated as important
// when no custom set is supplied.
var DefaultImportantEvents = []string{"error", "failed", "timeout", "completed"}

// Default implements the full optional capability set: card building,
// importance classification, idempotency keying, and destination naming.
type Default struct {
	Builder

	important map[string]struct{}
}

// NewDefault creates a schema treating the given event identifiers as
// important. With no arguments, DefaultImportantEvents is used.
func NewDefault(importantEvents ...string) *Default {
	if len(importantEvents) == 0 {
		importantEvents = DefaultImportantEvents
	}
	important := make(map[string]struct{}, len(importantEvents))
	for _, e := range importantEvents {
		important[e] = struct{}{}
	}
	return &Default{important: important}
}

// IsImportantEvent reports whether the event identifier is in the
// important set.
func (d *Default) IsImportantEvent(eventID string) bool {
	_, ok := d.important[eventID]
	return ok
}

// IdempotencyKey derives the duplicate-suppression key for a payload.
func (d *Default) IdempotencyKey(p domain.Payload) (string, bool) {
	return IdempotencyKey(p)
}

// DestinationName extracts the destination name from the payload's
// "destination" field, when present.
func (d *Default) DestinationName(p domain.Payload) (string, bool) {
	name, ok := p.String("destination")
	return name, ok && name != ""
}

var (
	_ ports.CardBuilder          = (*Default)(nil)
	_ ports.ImportanceClassifier = (*Default)(nil)
	_ ports.IdempotencyKeyer     = (*Default)(nil)
	_ ports.DestinationNamer     = (*Default)(nil)
)
