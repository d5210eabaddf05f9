// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package observer dispatches entity lifecycle events.

Observers are attached per resource, either explicitly through
[Dispatcher.Observe] or by name guessing (BlogPostResource → BlogPostObserver).
Listeners registered with [Dispatcher.Listen] receive every event of every
resource; the cache invalidation pipeline is one.

"-ing" events run before the write inside the transaction, and an error
returned by an observer aborts the operation. "-ed" events run after the
write; their errors are logged and swallowed.
*/
package observer

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/taibuivan/panelkit/internal/panel/entity"
)

// # Events

// Event names one lifecycle transition.
type Event string

const (
	Creating      Event = "creating"
	Created       Event = "created"
	Updating      Event = "updating"
	Updated       Event = "updated"
	Deleting      Event = "deleting"
	Deleted       Event = "deleted"
	Restoring     Event = "restoring"
	Restored      Event = "restored"
	ForceDeleting Event = "forceDeleting"
	ForceDeleted  Event = "forceDeleted"
)

// Before reports whether the event fires ahead of the write.
func (e Event) Before() bool {
	return strings.HasSuffix(string(e), "ing")
}

// Observer reacts to events of one resource.
type Observer interface {
	Handle(ctx context.Context, event Event, record *entity.Record) error
}

// Funcs is an [Observer] built from per-event callbacks.
type Funcs map[Event]func(ctx context.Context, record *entity.Record) error

// Handle implements [Observer].
func (funcs Funcs) Handle(ctx context.Context, event Event, record *entity.Record) error {
	if fn, ok := funcs[event]; ok {
		return fn(ctx, record)
	}
	return nil
}

// Observable is implemented by resources that declare their observers.
type Observable interface {
	Observers() []Observer
}

// Listener receives every event of every resource.
type Listener func(ctx context.Context, event Event, uriKey string, record *entity.Record)

// # Suspension

type suspendedKey struct{}

// WithoutObservers runs fn with observer dispatch suspended for every store
// call made with the context it receives. Listeners keep running so caches
// stay coherent. The suspension ends with fn, whatever fn returns.
func WithoutObservers(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(context.WithValue(ctx, suspendedKey{}, true))
}

// Suspended reports whether ctx is inside [WithoutObservers].
func Suspended(ctx context.Context) bool {
	suspended, _ := ctx.Value(suspendedKey{}).(bool)
	return suspended
}

// # Dispatcher

// Dispatcher routes events to observers and listeners.
type Dispatcher struct {
	mu        sync.RWMutex
	observers map[string][]Observer
	named     map[string]Observer
	guess     bool
	listeners []Listener
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher. With guess set, observers registered
// by name are attached to resources whose name matches.
func NewDispatcher(logger *slog.Logger, guess bool) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		observers: make(map[string][]Observer),
		named:     make(map[string]Observer),
		guess:     guess,
		logger:    logger,
	}
}

// Observe attaches observers to a resource URI key.
func (dispatcher *Dispatcher) Observe(uriKey string, observers ...Observer) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	dispatcher.observers[uriKey] = append(dispatcher.observers[uriKey], observers...)
}

// Register makes an observer discoverable by name ("BlogPostObserver").
func (dispatcher *Dispatcher) Register(name string, observer Observer) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	dispatcher.named[name] = observer
}

// Attach wires a newly registered resource: declared observers first, then
// a guessed one when guessing is enabled.
func (dispatcher *Dispatcher) Attach(uriKey, resourceName string, declared []Observer) {
	dispatcher.Observe(uriKey, declared...)
	if !dispatcher.guess {
		return
	}
	dispatcher.mu.RLock()
	guessed, ok := dispatcher.named[GuessName(resourceName)]
	dispatcher.mu.RUnlock()
	if ok {
		dispatcher.Observe(uriKey, guessed)
	}
}

// Listen subscribes to every event.
func (dispatcher *Dispatcher) Listen(listener Listener) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	dispatcher.listeners = append(dispatcher.listeners, listener)
}

// Dispatch delivers an event. It returns the first observer error of a
// "-ing" event; other errors are logged.
func (dispatcher *Dispatcher) Dispatch(ctx context.Context, uriKey string, event Event, record *entity.Record) error {
	if dispatcher == nil {
		return nil
	}

	dispatcher.mu.RLock()
	observers := dispatcher.observers[uriKey]
	listeners := dispatcher.listeners
	dispatcher.mu.RUnlock()

	if !Suspended(ctx) {
		for _, observer := range observers {
			if err := observer.Handle(ctx, event, record); err != nil {
				if event.Before() {
					return err
				}
				dispatcher.logger.WarnContext(ctx, "observer_failed",
					slog.String("resource", uriKey),
					slog.String("event", string(event)),
					slog.Any("error", err),
				)
			}
		}
	}

	if !event.Before() {
		for _, listener := range listeners {
			listener(ctx, event, uriKey, record)
		}
	}
	return nil
}

// GuessName derives an observer name from a resource name.
func GuessName(resourceName string) string {
	return strings.TrimSuffix(resourceName, "Resource") + "Observer"
}
