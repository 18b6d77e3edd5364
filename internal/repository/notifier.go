package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/pageza/chefai/backend/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier announces that the recipe table changed. Subscribers receive coalesced,
// payload-free events; the channel is closed once ctx is done or the feed breaks.
type Notifier interface {
	Publish(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan struct{}, error)
	Close() error
}

// MemoryNotifier fans changes out within a single process
type MemoryNotifier struct {
	mu     sync.Mutex
	subs   map[chan struct{}]struct{}
	closed bool
}

// NewMemoryNotifier creates an in-process notifier
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[chan struct{}]struct{})}
}

// Publish signals every subscriber without blocking
func (n *MemoryNotifier) Publish(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		signal(ch)
	}
	return nil
}

// Subscribe returns a channel that receives an event after each Publish
func (n *MemoryNotifier) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil, ErrNotifierClosed
	}
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.subs[ch]; ok {
			delete(n.subs, ch)
			close(ch)
		}
	}()

	return ch, nil
}

// Close ends every subscription
func (n *MemoryNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	for ch := range n.subs {
		delete(n.subs, ch)
		close(ch)
	}
	return nil
}

// signal performs a non-blocking send; a pending event already covers this change
func signal(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// NewNotifier builds the notifier selected by cfg.Notifier. rdb is only required for the
// redis notifier.
func NewNotifier(cfg *config.Config, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) (Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierMemory, "":
		return NewMemoryNotifier(), nil
	case config.NotifierRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis notifier requires a redis client")
		}
		return NewRedisNotifier(rdb), nil
	case config.NotifierPostgres:
		return NewPostgresNotifier(db, cfg.PostgresDSN(), logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}
