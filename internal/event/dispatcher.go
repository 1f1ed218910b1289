// Package event provides in-process event dispatch for domain events and
// cancellable gating hooks. Listeners are registered explicitly and invoked
// in registration order; there is no global bus.
package event

import (
	"context"
	"log/slog"
)

// RecordsEvents marks an aggregate root as able to queue domain events for
// release after a successful persistence operation.
type RecordsEvents interface {
	// ReleaseEvents returns all queued events and clears the queue.
	ReleaseEvents() []any
}

// Listener handles dispatched events. A listener receives every event and is
// expected to ignore types it does not care about.
type Listener interface {
	Handle(ctx context.Context, event any)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ctx context.Context, event any)

// Handle calls the underlying function.
func (f ListenerFunc) Handle(ctx context.Context, event any) {
	f(ctx, event)
}

// Dispatcher delivers events to registered listeners.
type Dispatcher interface {
	// Dispatch delivers the event to every listener in registration order.
	Dispatch(ctx context.Context, event any)

	// DispatchUntilHalted delivers the event to listeners in registration
	// order, stopping as soon as a cancellable event reports cancellation.
	DispatchUntilHalted(ctx context.Context, event any)

	// DispatchFrom releases the recorder's queued events and dispatches each.
	DispatchFrom(ctx context.Context, recorder RecordsEvents)
}

// Registry is the Dispatcher implementation: a plain ordered listener list.
type Registry struct {
	listeners []Listener
	logger    *slog.Logger
}

// NewRegistry creates an empty listener registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register appends a listener. Listeners are invoked in registration order.
func (r *Registry) Register(listener Listener) {
	r.listeners = append(r.listeners, listener)
}

// RegisterFunc appends a function listener.
func (r *Registry) RegisterFunc(fn func(ctx context.Context, event any)) {
	r.Register(ListenerFunc(fn))
}

// Dispatch delivers the event to every listener.
func (r *Registry) Dispatch(ctx context.Context, event any) {
	for _, listener := range r.listeners {
		listener.Handle(ctx, event)
	}
}

// DispatchUntilHalted delivers the event, stopping once it is cancelled.
func (r *Registry) DispatchUntilHalted(ctx context.Context, event any) {
	for _, listener := range r.listeners {
		listener.Handle(ctx, event)

		if cancellable, ok := event.(Cancellable); ok && cancellable.IsCancelled() {
			r.logger.Debug("event dispatch halted",
				slog.String("reason", cancellable.CancelReason()))
			return
		}
	}
}

// DispatchFrom releases and dispatches every event queued on the recorder.
func (r *Registry) DispatchFrom(ctx context.Context, recorder RecordsEvents) {
	for _, released := range recorder.ReleaseEvents() {
		r.Dispatch(ctx, released)
	}
}
