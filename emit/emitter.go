// Package emit provides pluggable observability for flow tick execution:
// a tagged Event plus an Emitter interface backed by logging, tracing,
// metrics, or in-memory implementations.
package emit

import "context"

// Emitter receives events raised during flow tick execution. Common
// backends: structured logging, distributed tracing (OpenTelemetry),
// metrics (Prometheus), or in-memory capture for tests.
//
// Implementations should be non-blocking and safe for concurrent use —
// the scheduler calls Emit from every node's goroutine.
type Emitter interface {
	// Emit sends a single event. It must not block the caller on a slow
	// backend and must not panic; failures are logged internally.
	Emit(event Event)

	// EmitBatch sends multiple events in declared order. Individual
	// failures are logged but not returned; EmitBatch only reports
	// catastrophic, configuration-level failures.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until buffered events are delivered or ctx expires.
	// Safe to call multiple times.
	Flush(ctx context.Context) error
}
