package events

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/taskboardhq/taskboard/pkg/observability"
)

// Type identifies a domain event
type Type string

const (
	TypeBoardCreated  Type = "board.created"
	TypeBoardUpdated  Type = "board.updated"
	TypeBoardDeleted  Type = "board.deleted"
	TypeColumnChanged Type = "column.changed"
	TypeTaskCreated   Type = "task.created"
	TypeTaskUpdated   Type = "task.updated"
	TypeTaskDeleted   Type = "task.deleted"
	TypeShareChanged  Type = "share.changed"

	TypeProfileChanged    Type = "profile.changed"
	TypeTeamChanged       Type = "team.changed"
	TypeMembershipChanged Type = "membership.changed"
	TypeUserChanged       Type = "user.changed"
)

// Event is a typed domain event published on writes to core entities.
// Subscribers refresh read-model projections and invalidate caches; the
// eventual-consistency window between the write and the refresh is bounded
// by handler timeout plus cache TTL.
type Event struct {
	Type     Type                   `json:"type"`
	EntityID string                 `json:"entity_id"`
	BoardID  string                 `json:"board_id,omitempty"`
	UserID   string                 `json:"user_id,omitempty"`
	At       time.Time              `json:"at"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// Handler processes a single event
type Handler func(ctx context.Context, event Event) error

// Bus is an in-process publish/subscribe bus. Dispatch is asynchronous and
// best-effort: a failing or panicking handler is logged and counted, never
// propagated to the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
	all      []Handler

	timeout time.Duration
	logger  *observability.Logger
	metrics *observability.Metrics

	wg     sync.WaitGroup
	closed bool
}

// NewBus creates an event bus. timeout bounds each handler invocation;
// zero uses a 10s default. metrics may be nil.
func NewBus(timeout time.Duration, logger *observability.Logger, metrics *observability.Metrics) *Bus {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Bus{
		handlers: make(map[Type][]Handler),
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// SubscribeAll registers a handler for every event type
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish dispatches an event to all matching handlers asynchronously.
// Publish never blocks on handlers and never returns an error to the write
// path that triggered it.
func (b *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := make([]Handler, 0, len(b.handlers[event.Type])+len(b.all))
	handlers = append(handlers, b.handlers[event.Type]...)
	handlers = append(handlers, b.all...)
	// Add while still holding the lock, so Close cannot observe a zero
	// counter between the closed check and the dispatch below.
	b.wg.Add(len(handlers))
	b.mu.RUnlock()

	if b.metrics != nil {
		b.metrics.EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()
	}

	for _, h := range handlers {
		go b.run(event, h)
	}
}

// run invokes one handler with timeout enforcement and panic recovery
func (b *Bus) run(event Event, h Handler) {
	defer b.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panic: %v\n%s", r, debug.Stack())
			}
		}()
		return h(ctx, event)
	}()

	if err != nil {
		if b.metrics != nil {
			b.metrics.EventHandlerErrors.WithLabelValues(string(event.Type)).Inc()
		}
		if b.logger != nil {
			b.logger.WithError(err).WithField("event", string(event.Type)).Error("event handler failed")
		}
	}
}

// Close stops accepting events and waits for in-flight handlers, bounded by
// the context deadline
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
