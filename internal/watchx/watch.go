// Package watchx provides a small most-recent-value broadcast primitive used
// for the live auth-session signal and for local-store observation. Delivery
// is conflated: a slow subscriber only ever sees the latest published value,
// never a backlog.
package watchx

import (
	"context"
	"sync"
)

// Source broadcasts values to any number of subscribers. The zero value is
// not usable; construct with NewSource.
type Source[T any] struct {
	mu     sync.Mutex
	subs   map[chan T]context.CancelFunc
	last   T
	seeded bool
}

func NewSource[T any]() *Source[T] {
	return &Source[T]{subs: make(map[chan T]context.CancelFunc)}
}

// Publish records v as the latest value and delivers it to every subscriber,
// replacing any value a subscriber has not yet consumed.
func (s *Source[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = v
	s.seeded = true
	for ch := range s.subs {
		send(ch, v)
	}
}

// Subscribe returns a channel that receives the current value (if one has
// been published) followed by every subsequent publish, conflated. The
// channel is closed when ctx is cancelled or the source is closed; closing
// is the only termination signal a consumer needs to watch for.
func (s *Source[T]) Subscribe(ctx context.Context) <-chan T {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan T, 1)

	s.mu.Lock()
	s.subs[ch] = cancel
	if s.seeded {
		send(ch, s.last)
	}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}()

	return ch
}

// Close terminates every subscription. Subsequent Publish calls are still
// safe but reach no one; subsequent Subscribe calls receive a closed channel
// after their context ends.
func (s *Source[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch, cancel := range s.subs {
		delete(s.subs, ch)
		close(ch)
		cancel()
	}
}

// Last returns the most recently published value. ok is false if nothing has
// been published yet.
func (s *Source[T]) Last() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.seeded
}

// Len reports the number of active subscriptions.
func (s *Source[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// send replaces any unconsumed value with v. The channel has capacity 1 and
// is only written under the source mutex, so the drain-then-send pair cannot
// race with another producer.
func send[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
