// Package schema formats event payloads into chat-card payloads and
// provides the default schema capabilities used by the dispatcher:
// importance classification, idempotency key derivation, and destination
// naming.
//
// All capabilities are optional from the dispatcher's point of view;
// applications may supply their own schema implementing any subset of the
// interfaces in internal/ports.
package schema
