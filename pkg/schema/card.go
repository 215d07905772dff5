package schema

import (
	"fmt"

	"github.com/macielcr7/exa-chat-notifier/internal/domain"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "…"

// fieldWidgets maps well-known payload fields to card labels, in render
// order.
var fieldWidgets = []struct {
	key   string
	label string
}{
	{"bucket", "Bucket"},
	{"object", "Object"},
	{"processedCount", "Processed"},
}

// Builder formats payloads into Google Chat-style card payloads.
// It is stateless and pure: the same payload and bound produce the same card.
type Builder struct{}

// BuildCard produces the outbound message body for a payload. The card
// carries the event identifier as its header title, well-known fields as
// key/value widgets, and the "message" field as a text paragraph truncated
// to maxMessage characters.
func (Builder) BuildCard(p domain.Payload, maxMessage int) (*domain.CardPayload, error) {
	title, ok := p.EventID()
	if !ok {
		title = "notification"
	}

	var widgets []domain.Widget
	for _, fw := range fieldWidgets {
		if v, ok := p.Field(fw.key); ok {
			widgets = append(widgets, domain.Widget{
				KeyValue: &domain.KeyValue{TopLabel: fw.label, Content: v},
			})
		}
	}

	text := title
	if msg, ok := p.String("message"); ok && msg != "" {
		msg = Truncate(msg, maxMessage)
		widgets = append(widgets, domain.Widget{
			TextParagraph: &domain.TextParagraph{Text: msg},
		})
		text = fmt.Sprintf("%s: %s", title, msg)
	}

	card := domain.Card{
		Header: &domain.CardHeader{Title: title},
	}
	if len(widgets) > 0 {
		card.Sections = []domain.Section{{Widgets: widgets}}
	}

	return &domain.CardPayload{
		Text:  text,
		Cards: []domain.Card{card},
	}, nil
}

// Truncate bounds s to max characters. Text that fits is returned unchanged;
// longer text is cut to max-1 characters with a single ellipsis appended.
// For max <= 1 the result is just the ellipsis character.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return Ellipsis
	}
	return string(runes[:max-1]) + Ellipsis
}
