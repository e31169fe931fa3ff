package events

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HandlerFunc is a function that handles an event.
type HandlerFunc func(ctx context.Context, event Event) error

// PanicError reports a handler that panicked instead of returning.
type PanicError struct {
	Handler string
	Value   any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("event handler %q panicked: %v", e.Handler, e.Value)
}

// EventBus connects the switcher to its broadcasters.
//
// Emit fans an event out to one goroutine per handler and returns at once.
// EmitSync calls the handlers one after another in subscription order and
// returns when all are done, so a sequence of EmitSync calls reaches every
// subscriber in the order it was emitted.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]subscription
	stopCh   chan struct{}
	stopped  bool
	inflight sync.WaitGroup
	logger   zerolog.Logger
}

type subscription struct {
	name string
	fn   HandlerFunc
}

// NewEventBus creates a new EventBus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]subscription),
		stopCh:   make(chan struct{}),
		logger:   log.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers handler for eventType under name. Subscribing again
// under the same name replaces the earlier handler and keeps its position.
func (eb *EventBus) Subscribe(eventType EventType, name string, handler HandlerFunc) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.handlers[eventType]
	if i := slices.IndexFunc(subs, func(s subscription) bool { return s.name == name }); i >= 0 {
		subs[i].fn = handler
		return
	}
	eb.handlers[eventType] = append(subs, subscription{name: name, fn: handler})

	eb.logger.Debug().
		Str("event", string(eventType)).
		Str("handler", name).
		Msg("subscribed")
}

// Unsubscribe removes the handler registered under name.
func (eb *EventBus) Unsubscribe(eventType EventType, name string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs, ok := eb.handlers[eventType]
	if !ok {
		return
	}
	eb.handlers[eventType] = slices.DeleteFunc(slices.Clone(subs), func(s subscription) bool {
		return s.name == name
	})

	eb.logger.Debug().
		Str("event", string(eventType)).
		Str("handler", name).
		Msg("unsubscribed")
}

// subscribers returns a copy of the handlers for eventType, or nil once the
// bus is stopped. Handlers run without the lock so they may emit or
// subscribe themselves.
func (eb *EventBus) subscribers(eventType EventType) []subscription {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.stopped {
		return nil
	}
	return slices.Clone(eb.handlers[eventType])
}

// invoke runs one handler, turning a panic into a *PanicError.
func (eb *EventBus) invoke(ctx context.Context, sub subscription, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Handler: sub.name, Value: r}
			eb.logger.Error().
				Str("event", string(event.Type)).
				Str("handler", sub.name).
				Interface("panic", r).
				Msg("handler panicked")
		}
	}()
	err = sub.fn(ctx, event)
	if err != nil {
		eb.logger.Error().
			Err(err).
			Str("event", string(event.Type)).
			Str("handler", sub.name).
			Msg("handler failed")
	}
	return err
}

// Emit publishes event to every handler without waiting for them.
func (eb *EventBus) Emit(ctx context.Context, event Event) {
	eb.mu.RLock()
	if eb.stopped || len(eb.handlers[event.Type]) == 0 {
		eb.mu.RUnlock()
		return
	}
	subs := slices.Clone(eb.handlers[event.Type])
	// Counted under the lock so Stop cannot start waiting in between.
	eb.inflight.Add(len(subs))
	eb.mu.RUnlock()

	eb.logger.Trace().
		Str("event", string(event.Type)).
		Str("source", event.Source).
		Int("handlers", len(subs)).
		Msg("emit")

	for _, sub := range subs {
		sub := sub
		go func() {
			defer eb.inflight.Done()
			eb.invoke(ctx, sub, event)
		}()
	}
}

// EmitSync publishes event to every handler in subscription order and waits
// for all of them. The returned error joins every handler failure.
func (eb *EventBus) EmitSync(ctx context.Context, event Event) error {
	subs := eb.subscribers(event.Type)
	if len(subs) == 0 {
		return nil
	}

	var errs []error
	for _, sub := range subs {
		if err := eb.invoke(ctx, sub, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop rejects further events and waits for handlers started by Emit.
// Later calls are no-ops.
func (eb *EventBus) Stop() {
	eb.mu.Lock()
	if eb.stopped {
		eb.mu.Unlock()
		return
	}
	eb.stopped = true
	close(eb.stopCh)
	eb.mu.Unlock()

	eb.inflight.Wait()
	eb.logger.Info().Msg("event bus stopped")
}

// StopCh returns a channel that is closed when the EventBus is stopped.
func (eb *EventBus) StopCh() <-chan struct{} {
	return eb.stopCh
}

// HandlerCount returns the number of handlers registered for eventType.
func (eb *EventBus) HandlerCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}
