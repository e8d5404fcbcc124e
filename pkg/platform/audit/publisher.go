package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store is the append-only persistence behind the publisher.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, user string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Emitter accepts audit events for recording. The Publisher emits
// synchronously; the worker package provides a channel-backed emitter for
// callers that must not wait on persistence.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Sink receives a copy of every event, best effort. Kafka is the production
// sink; failures are logged, never propagated, because the ledger mutation
// has already committed by the time the event is emitted.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. Appending to the store is
// synchronous; sinks are fire-and-forget.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithSink attaches an external event sink.
func WithSink(sink Sink) Option {
	return func(p *Publisher) { p.sink = sink }
}

// WithLogger sets the logger for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Emit records an event, filling in ID and timestamp when absent.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"event_id", event.ID,
				"action", event.Action,
				"error", err,
			)
		}
	}
	return nil
}

// ListByUser returns events recorded for one user.
func (p *Publisher) ListByUser(ctx context.Context, user string) ([]Event, error) {
	return p.store.ListByUser(ctx, user)
}

// ListRecent returns the most recent events across all users.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}
