package schema

import (
	"hash/fnv"
	"strconv"

	"github.com/macielcr7/exa-chat-notifier/internal/domain"
)

// IdempotencyKey derives a deterministic duplicate-suppression key from the
// identity fields of a payload: the event identifier plus bucket, object,
// and processedCount. Payloads without an event identifier have no key and
// are never suppressed.
func IdempotencyKey(p domain.Payload) (string, bool) {
	event, ok := p.EventID()
	if !ok {
		return "", false
	}

	bucket, _ := p.String("bucket")
	object, _ := p.String("object")
	count, _ := p.Field("processedCount")

	h := fnv.New64a()
	for _, part := range []string{event, bucket, object, count} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{'|'})
	}
	return strconv.FormatUint(h.Sum64(), 16), true
}
