// Package event declares the append-only event the core emits and the
// Sink boundary external adapters consume it through (§6). The core
// only ever calls Sink.Emit; it does not know SQL, HTTP, or websockets.
package event

import (
	"context"
	"time"
)

// Kind is the closed set of event types the core emits.
type Kind string

const (
	KindModuleRequest Kind = "module_request"
	KindModuleResult  Kind = "module_result"
	KindRoleOutcome   Kind = "role_outcome"
	KindTransition    Kind = "transition"
	KindTerminal      Kind = "terminal"
)

// Event is one append-only record of task activity.
type Event struct {
	ID        string
	TaskID    string
	Kind      Kind
	Role      string
	Payload   map[string]any
	Timestamp time.Time
}

// Sink accepts events on a best-effort, non-blocking basis. A failed
// Emit must not be treated as fatal by the core — the task continues
// regardless of sink availability.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// NopSink discards every event; used when no sink is configured.
type NopSink struct{}

func (NopSink) Emit(ctx context.Context, e Event) error { return nil }

var _ Sink = NopSink{}
