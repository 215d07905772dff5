package schema

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/macielcr7/exa-chat-notifier/internal/domain"
)

func TestTruncate(t *testing.T) {
	long := "This is a very long message that needs to be truncated"

	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"fits exactly", "abc", 3, "abc"},
		{"shorter than max", "abc", 10, "abc"},
		{"empty", "", 5, ""},
		{"cut with ellipsis", "abcdef", 4, "abc" + Ellipsis},
		{"max one", "abcdef", 1, Ellipsis},
		{"max zero", "abcdef", 0, Ellipsis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
		})
	}

	got := Truncate(long, 20)
	if n := utf8.RuneCountInString(got); n != 20 {
		t.Errorf("Truncate(long, 20) length = %d characters, want 20", n)
	}
	if !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("Truncate(long, 20) = %q, want ellipsis suffix", got)
	}
}

func TestBuilder_BuildCard(t *testing.T) {
	p := domain.Payload{
		"event":          "completed",
		"bucket":         "uploads",
		"object":         "report.csv",
		"processedCount": float64(42),
		"message":        "processing finished",
	}

	card, err := Builder{}.BuildCard(p, 4096)
	if err != nil {
		t.Fatalf("BuildCard() error = %v", err)
	}

	if card.Text != "completed: processing finished" {
		t.Errorf("Text = %q", card.Text)
	}
	if len(card.Cards) != 1 {
		t.Fatalf("len(Cards) = %d, want 1", len(card.Cards))
	}
	c := card.Cards[0]
	if c.Header == nil || c.Header.Title != "completed" {
		t.Errorf("Header = %+v, want title %q", c.Header, "completed")
	}
	if len(c.Sections) != 1 {
		t.Fatalf("len(Sections) = %d, want 1", len(c.Sections))
	}

	widgets := c.Sections[0].Widgets
	if len(widgets) != 4 {
		t.Fatalf("len(Widgets) = %d, want 4", len(widgets))
	}
	if kv := widgets[0].KeyValue; kv == nil || kv.TopLabel != "Bucket" || kv.Content != "uploads" {
		t.Errorf("widget 0 = %+v, want Bucket=uploads", widgets[0])
	}
	if kv := widgets[2].KeyValue; kv == nil || kv.Content != "42" {
		t.Errorf("widget 2 = %+v, want Processed=42", widgets[2])
	}
	if tp := widgets[3].TextParagraph; tp == nil || tp.Text != "processing finished" {
		t.Errorf("widget 3 = %+v, want message paragraph", widgets[3])
	}
}

func TestBuilder_BuildCard_TruncatesMessage(t *testing.T) {
	p := domain.Payload{
		"event":   "error",
		"message": strings.Repeat("x", 100),
	}

	card, err := Builder{}.BuildCard(p, 20)
	if err != nil {
		t.Fatalf("BuildCard() error = %v", err)
	}

	tp := card.Cards[0].Sections[0].Widgets[0].TextParagraph
	if tp == nil {
		t.Fatal("message paragraph missing")
	}
	if n := utf8.RuneCountInString(tp.Text); n != 20 {
		t.Errorf("message length = %d characters, want 20", n)
	}
	if !strings.HasSuffix(tp.Text, Ellipsis) {
		t.Errorf("message = %q, want ellipsis suffix", tp.Text)
	}
}

func TestBuilder_BuildCard_NoEventID(t *testing.T) {
	card, err := Builder{}.BuildCard(domain.Payload{"foo": "bar"}, 4096)
	if err != nil {
		t.Fatalf("BuildCard() error = %v", err)
	}
	if card.Cards[0].Header.Title != "notification" {
		t.Errorf("Title = %q, want %q", card.Cards[0].Header.Title, "notification")
	}
}
