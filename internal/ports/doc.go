// Package ports defines the interfaces that connect the dispatcher to its
// collaborators.
//
// The dispatcher depends only on these interfaces. Concrete implementations
// live in internal/adapters (HTTP delivery) and pkg/schema (card building,
// key derivation); applications may substitute their own.
//
// # Port Interfaces
//
//   - [CardSender]: delivers a card payload to a webhook URL
//   - [CardBuilder]: formats a payload into a card payload
//   - [DestinationResolver]: maps destination names to URLs
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Optional schema capabilities
//
// [ImportanceClassifier], [IdempotencyKeyer] and [DestinationNamer] are
// independently optional. The dispatcher probes the configured schema value
// for each one with a type assertion and falls back to a defined default
// when absent: no filtering, no idempotency, default destination.
package ports
