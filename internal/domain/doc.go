// Package domain contains the core types of the notification pipeline:
// event payloads, batch items, outbound card payloads, delivery results,
// and the domain error taxonomy.
//
// Types in this package have no dependencies on transport or scheduling
// concerns; they are shared between the dispatcher, the batch scheduler,
// and the delivery adapters.
package domain
