// Package live provides a small replaying publish/subscribe primitive used for
// push-based query results and generation state.
package live

import (
	"context"
	"sync"
)

type subscriber[T any] struct {
	ch   chan T
	done chan struct{}
}

// Topic fans published values out to subscribers.
//
// Every subscriber channel holds at most one undelivered value; publishing replaces a value the
// subscriber has not read yet, so slow readers skip intermediate values but always end on the
// most recent one. A new subscriber immediately receives the latest published value, if any.
//
// OnActive is called after the subscriber count goes from zero to one and OnIdle after it drops
// back to zero. Both run outside the topic's lock and may race with each other, so callers must
// re-check Len before acting on them.
type Topic[T any] struct {
	OnActive func()
	OnIdle   func()

	mu     sync.Mutex
	subs   map[uint64]*subscriber[T]
	nextID uint64
	latest T
	has    bool
}

// Subscribe registers a subscriber until ctx is done, at which point its channel is closed
func (t *Topic[T]) Subscribe(ctx context.Context) <-chan T {
	sub := &subscriber[T]{
		ch:   make(chan T, 1),
		done: make(chan struct{}),
	}

	t.mu.Lock()
	if t.subs == nil {
		t.subs = make(map[uint64]*subscriber[T])
	}
	id := t.nextID
	t.nextID++
	t.subs[id] = sub
	if t.has {
		sub.ch <- t.latest
	}
	first := len(t.subs) == 1
	t.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			t.unsubscribe(id)
		case <-sub.done:
		}
	}()

	if first && t.OnActive != nil {
		t.OnActive()
	}
	return sub.ch
}

func (t *Topic[T]) unsubscribe(id uint64) {
	t.mu.Lock()
	sub, ok := t.subs[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.subs, id)
	close(sub.ch)
	close(sub.done)
	idle := len(t.subs) == 0
	t.mu.Unlock()

	if idle && t.OnIdle != nil {
		t.OnIdle()
	}
}

// Publish records v as the latest value and delivers it to every subscriber
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.latest = v
	t.has = true
	for _, sub := range t.subs {
		deliver(sub.ch, v)
	}
}

// Finish delivers a final value to the current subscribers and closes their channels.
// The latest value is cleared so later subscribers start empty. OnIdle is not called.
func (t *Topic[T]) Finish(final T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, sub := range t.subs {
		deliver(sub.ch, final)
		close(sub.ch)
		close(sub.done)
		delete(t.subs, id)
	}
	t.clearLocked()
}

// Latest returns the most recently published value
func (t *Topic[T]) Latest() (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.has
}

// ClearLatest forgets the latest value so it is no longer replayed
func (t *Topic[T]) ClearLatest() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

// Len returns the number of active subscribers
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

func (t *Topic[T]) clearLocked() {
	var zero T
	t.latest = zero
	t.has = false
}

// deliver replaces any unread value. Callers hold the topic lock, so they are the only sender.
func deliver[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
