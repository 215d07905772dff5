package domain

import (
	"fmt"
	"strconv"
)

// eventIDFields is the lookup order for extracting an event identifier from
// a payload. The first field present wins. This is a convention inherited
// from upstream event producers; payloads using a different field name are
// never matched by the importance filter.
var eventIDFields = []string{"event", "type", "status"}

// Payload is an opaque, caller-defined event record. The pipeline treats it
// as an unordered bag of fields and never mutates it; anything stored in a
// queue is a copy made via Clone.
type Payload map[string]any

// EventID extracts the event identifier used for importance filtering.
// It checks the "event", "type", and "status" fields in that order and
// returns the first non-empty string value found.
func (p Payload) EventID() (string, bool) {
	for _, field := range eventIDFields {
		if s, ok := p.String(field); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// String returns the named field as a string.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the named field as an int. Numeric JSON values decode as
// float64, so those are accepted alongside native integer types.
func (p Payload) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Field returns the named field formatted as a string regardless of its
// underlying type, for display in card widgets.
func (p Payload) Field(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// Clone returns a shallow copy of the payload. Nested values are shared;
// the pipeline only ever reads them.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// BatchItem pairs a payload with its destination name. An empty destination
// means the default destination.
type BatchItem struct {
	Payload     Payload
	Destination string
}
