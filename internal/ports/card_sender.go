package ports

import (
	"context"

	"github.com/macielcr7/exa-chat-notifier/internal/domain"
)

// CardSender delivers a card payload to a webhook URL.
// Implementations handle serialization, HTTP communication, and retries;
// an error is returned only after all attempts are exhausted.
type CardSender interface {
	// Send posts the card to the given URL and returns the result of the
	// accepted attempt. On failure the error is a *domain.DeliveryError.
	Send(ctx context.Context, url string, card *domain.CardPayload) (*domain.DeliveryResult, error)
}
