package ports

import "github.com/macielcr7/exa-chat-notifier/internal/domain"

// Schema capabilities are independently optional. A schema value may
// implement any subset; the dispatcher probes each with a type assertion.

// ImportanceClassifier decides whether an event identifier is important.
// Used only when the dispatcher runs at the "important" level.
type ImportanceClassifier interface {
	IsImportantEvent(eventID string) bool
}

// IdempotencyKeyer derives a deterministic duplicate-suppression key from a
// payload. Returning ok=false means the payload has no key and is never
// suppressed.
type IdempotencyKeyer interface {
	IdempotencyKey(p domain.Payload) (key string, ok bool)
}

// DestinationNamer extracts a destination name from a payload.
// Returning ok=false routes the payload to the default destination.
type DestinationNamer interface {
	DestinationName(p domain.Payload) (name string, ok bool)
}
