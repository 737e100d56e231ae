// Package event provides lightweight signal emitters for change notification.
//
// An Emitter fans an event value out to its subscribers synchronously, in
// subscription order. Subscriptions are detachable handles so that consumers
// can release everything they acquired in one disposal step (see Disposer).
package event

import (
	"sync"

	"github.com/google/uuid"
)

// Handler receives emitted values of type T.
type Handler[T any] func(T)

// Emitter delivers values of type T to subscribers.
// The zero value is not usable; create with NewEmitter.
type Emitter[T any] struct {
	mu       sync.RWMutex
	handlers []handlerEntry[T]
	closed   bool
}

// handlerEntry pairs a handler with its subscription identity.
type handlerEntry[T any] struct {
	id string
	fn Handler[T]
}

// NewEmitter creates a new emitter.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{
		handlers: make([]handlerEntry[T], 0),
	}
}

// Subscribe registers a handler and returns its subscription handle.
// Subscribing to a closed emitter returns an inert subscription.
func (e *Emitter[T]) Subscribe(fn Handler[T]) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return &Subscription{}
	}

	id := uuid.New().String()
	e.handlers = append(e.handlers, handlerEntry[T]{id: id, fn: fn})

	return &Subscription{id: id, remove: e.remove}
}

// Emit delivers v to all current subscribers in subscription order.
// Handlers run outside the emitter lock, so a handler may subscribe
// or unsubscribe without deadlocking.
func (e *Emitter[T]) Emit(v T) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return
	}
	handlers := make([]Handler[T], len(e.handlers))
	for i, h := range e.handlers {
		handlers[i] = h.fn
	}
	e.mu.RUnlock()

	for _, fn := range handlers {
		fn(v)
	}
}

// HandlerCount returns the number of active subscriptions.
func (e *Emitter[T]) HandlerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers)
}

// Close drops all subscriptions. After Close, Emit and Subscribe are no-ops.
// Close is safe to call more than once.
func (e *Emitter[T]) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.handlers = nil
}

// remove deletes the handler with the given subscription ID.
func (e *Emitter[T]) remove(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, h := range e.handlers {
		if h.id == id {
			e.handlers = append(e.handlers[:i], e.handlers[i+1:]...)
			return
		}
	}
}

// Subscription is a detachable handle for a registered handler.
type Subscription struct {
	once   sync.Once
	id     string
	remove func(id string)
}

// Unsubscribe removes the handler. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if s.remove != nil {
			s.remove(s.id)
		}
	})
}

// Signal is a payload-less emitter for "something changed" notifications.
type Signal struct {
	e *Emitter[struct{}]
}

// NewSignal creates a new signal.
func NewSignal() *Signal {
	return &Signal{e: NewEmitter[struct{}]()}
}

// Subscribe registers a handler for the signal.
func (s *Signal) Subscribe(fn func()) *Subscription {
	return s.e.Subscribe(func(struct{}) { fn() })
}

// Emit fires the signal.
func (s *Signal) Emit() {
	s.e.Emit(struct{}{})
}

// HandlerCount returns the number of active subscriptions.
func (s *Signal) HandlerCount() int {
	return s.e.HandlerCount()
}

// Close drops all subscriptions. Safe to call more than once.
func (s *Signal) Close() {
	s.e.Close()
}
