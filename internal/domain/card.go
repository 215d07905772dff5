package domain

// CardPayload is the outbound message body delivered to a chat webhook.
// Text carries the fallback plain-text rendering; Cards carries the rich
// card layout understood by chat-card endpoints.
type CardPayload struct {
	Text  string `json:"text,omitempty"`
	Cards []Card `json:"cards,omitempty"`
}

// Card is a single rich card with an optional header and one or more
// sections of widgets.
type Card struct {
	Header   *CardHeader `json:"header,omitempty"`
	Sections []Section   `json:"sections,omitempty"`
}

// CardHeader holds the card title line.
type CardHeader struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Section groups widgets within a card.
type Section struct {
	Widgets []Widget `json:"widgets"`
}

// Widget is one renderable element. Exactly one field is set.
type Widget struct {
	TextParagraph *TextParagraph `json:"textParagraph,omitempty"`
	KeyValue      *KeyValue      `json:"keyValue,omitempty"`
}

// TextParagraph is a free-text widget.
type TextParagraph struct {
	Text string `json:"text"`
}

// KeyValue is a labeled value widget.
type KeyValue struct {
	TopLabel string `json:"topLabel"`
	Content  string `json:"content"`
}
