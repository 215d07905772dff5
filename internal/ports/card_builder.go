package ports

import "github.com/macielcr7/exa-chat-notifier/internal/domain"

// CardBuilder formats an event payload into the outbound card payload.
// Implementations must be pure: same payload and bound, same card.
type CardBuilder interface {
	// BuildCard produces the message body to deliver. maxMessage bounds any
	// embedded free-text field; longer text is truncated with an ellipsis.
	BuildCard(p domain.Payload, maxMessage int) (*domain.CardPayload, error)
}

// DestinationResolver maps a destination name to a webhook URL.
type DestinationResolver interface {
	// Resolve returns the URL for the named destination. An empty name
	// selects the default destination. A named destination that does not
	// exist falls back to the default when one is configured; otherwise
	// Resolve fails with domain.ErrNoDestination.
	Resolve(name string) (string, error)
}
