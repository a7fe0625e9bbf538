// Package observable provides a minimal push-based stream of values.
//
// An Observable is cold: its producer runs once per Subscribe call and
// pushes values to a Subscriber until it completes, errors or the consumer
// unsubscribes. Signals are delivered on whatever goroutine the producer
// emits from; producers that emit from several goroutines are responsible
// for ordering their own calls.
package observable

import (
	"fmt"
	"sync"
)

// Observer is the set of callbacks a consumer provides. Nil callbacks are
// skipped.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// Subscriber is the producer-facing side of a subscription.
type Subscriber[T any] interface {
	// Next delivers a value. It is dropped once the subscriber is closed.
	Next(value T)
	// Error delivers a terminal error and closes the subscriber.
	Error(err error)
	// Complete signals successful termination and closes the subscriber.
	Complete()
	// Closed reports whether further signals will be dropped.
	Closed() bool
	// Done is closed once the subscriber has terminated and any terminal
	// callback has returned.
	Done() <-chan struct{}
}

// Observable is a lazily produced stream of values.
type Observable[T any] struct {
	producer func(Subscriber[T]) func()
}

// New creates an Observable from a producer. The producer may return a
// teardown function, which runs exactly once when the subscription closes.
func New[T any](producer func(Subscriber[T]) (teardown func())) *Observable[T] {
	return &Observable[T]{producer: producer}
}

// Of returns an Observable that emits values in order and completes.
func Of[T any](values ...T) *Observable[T] {
	return New(func(s Subscriber[T]) func() {
		for _, v := range values {
			s.Next(v)
		}
		s.Complete()
		return nil
	})
}

// Throw returns an Observable that errors with err as soon as it is subscribed.
func Throw[T any](err error) *Observable[T] {
	return New(func(s Subscriber[T]) func() {
		s.Error(err)
		return nil
	})
}

// Subscribe starts the producer and returns a handle to the subscription.
// A panic in the producer is delivered to the observer as an error.
func (o *Observable[T]) Subscribe(observer Observer[T]) *Subscription {
	s := &subscriber[T]{
		observer: observer,
		done:     make(chan struct{}),
	}

	teardown := o.run(s)
	s.setTeardown(teardown)

	return &Subscription{close: s.unsubscribe, closed: s.Closed, done: s.done}
}

func (o *Observable[T]) run(s *subscriber[T]) (teardown func()) {
	defer func() {
		if r := recover(); r != nil {
			s.Error(fmt.Errorf("observable: producer panicked: %v", r))
		}
	}()
	if o == nil || o.producer == nil {
		s.Complete()
		return nil
	}
	return o.producer(s)
}

// Subscription is the consumer-facing side of a subscription.
type Subscription struct {
	close  func()
	closed func() bool
	done   <-chan struct{}
}

// Unsubscribe closes the subscription. No further callbacks are invoked.
func (s *Subscription) Unsubscribe() {
	s.close()
}

// Closed reports whether the subscription has terminated.
func (s *Subscription) Closed() bool {
	return s.closed()
}

// Done is closed once the subscription has terminated.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

type subscriber[T any] struct {
	observer Observer[T]
	done     chan struct{}
	finished sync.Once

	mu       sync.Mutex
	closed   bool
	teardown func()
	tornDown bool
}

func (s *subscriber[T]) Next(value T) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.observer.Next == nil {
		return
	}
	s.observer.Next(value)
}

func (s *subscriber[T]) Error(err error) {
	if !s.close() {
		return
	}
	if s.observer.Error != nil {
		s.observer.Error(err)
	}
	s.finish()
}

func (s *subscriber[T]) Complete() {
	if !s.close() {
		return
	}
	if s.observer.Complete != nil {
		s.observer.Complete()
	}
	s.finish()
}

func (s *subscriber[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *subscriber[T]) Done() <-chan struct{} {
	return s.done
}

func (s *subscriber[T]) unsubscribe() {
	if !s.close() {
		return
	}
	s.finish()
}

// close marks the subscriber closed and reports whether this call did it.
func (s *subscriber[T]) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

// finish runs after the terminal callback: it releases Done and tears the
// producer down.
func (s *subscriber[T]) finish() {
	s.finished.Do(func() { close(s.done) })
	s.runTeardown()
}

// setTeardown installs the producer's teardown, running it immediately if
// the subscriber closed while the producer was still running.
func (s *subscriber[T]) setTeardown(teardown func()) {
	if teardown == nil {
		return
	}
	s.mu.Lock()
	s.teardown = teardown
	closed := s.closed
	s.mu.Unlock()
	if closed {
		s.runTeardown()
	}
}

func (s *subscriber[T]) runTeardown() {
	s.mu.Lock()
	teardown := s.teardown
	if teardown == nil || s.tornDown {
		s.mu.Unlock()
		return
	}
	s.tornDown = true
	s.mu.Unlock()
	teardown()
}
