// Package worker decouples audit recording from request latency: ledger
// operations drop events into a buffered inbox and a background worker drains
// it into the publisher.
package worker

import (
	"context"
	"log/slog"

	audit "stakeyard/pkg/platform/audit"
)

// Inbox is a channel-backed audit.Emitter. Emit never blocks: when the
// buffer is full the event is dropped and logged, because a slow audit path
// must not stall ledger operations.
type Inbox struct {
	ch     chan audit.Event
	logger *slog.Logger
}

// NewInbox builds an inbox with the given buffer size.
func NewInbox(size int, logger *slog.Logger) *Inbox {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{ch: make(chan audit.Event, size), logger: logger}
}

// Emit enqueues the event for background recording.
func (i *Inbox) Emit(ctx context.Context, event audit.Event) error {
	select {
	case i.ch <- event:
		return nil
	default:
		i.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", event.Action, "user", event.User)
		return nil
	}
}

// Events exposes the drain side of the inbox.
func (i *Inbox) Events() <-chan audit.Event { return i.ch }

// Worker drains audit events from an inbox into the publisher.
type Worker struct {
	publisher *audit.Publisher
	inbox     <-chan audit.Event
	logger    *slog.Logger
}

func NewWorker(publisher *audit.Publisher, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

// Run drains the inbox until ctx is cancelled. Emit failures are logged and
// the worker keeps going; audit loss is preferable to a dead drain loop.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.publisher.Emit(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit record failed",
					"event_id", event.ID, "action", event.Action, "error", err)
			}
		}
	}
}
