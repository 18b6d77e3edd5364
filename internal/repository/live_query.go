package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pageza/chefai/backend/internal/live"
	"github.com/pageza/chefai/backend/internal/model"
	"go.uber.org/zap"
)

// DefaultGracePeriod is how long a live query keeps running after its last subscriber leaves
const DefaultGracePeriod = 5 * time.Second

// Snapshot is one complete result of a live query. A snapshot with a non-nil Err is the
// last value a subscriber receives before its channel is closed.
type Snapshot struct {
	Recipes []model.Recipe
	Err     error
}

type queryFunc func(ctx context.Context) ([]model.Recipe, error)

// LiveQuery is a query whose results are pushed to subscribers after every change to the store.
// It starts running when the first subscriber arrives and stops one grace period after the last
// one leaves.
type LiveQuery struct {
	key      string
	run      queryFunc
	notifier Notifier
	grace    time.Duration
	logger   *zap.Logger
	repo     *RecipeRepository

	topic live.Topic[Snapshot]

	mu      sync.Mutex
	cancel  context.CancelFunc
	gen     uint64
	idleSeq uint64
	timer   *time.Timer
	closed  bool
}

func newLiveQuery(key string, run queryFunc, r *RecipeRepository) *LiveQuery {
	q := &LiveQuery{
		key:      key,
		run:      run,
		notifier: r.notifier,
		grace:    r.grace,
		logger:   r.logger,
		repo:     r,
	}
	q.topic.OnActive = q.activate
	q.topic.OnIdle = q.idle
	return q
}

// Key identifies the query; queries with equal keys are shared
func (q *LiveQuery) Key() string {
	return q.key
}

// Subscribe registers for snapshots until ctx is done. The latest snapshot, if any,
// is delivered immediately.
func (q *LiveQuery) Subscribe(ctx context.Context) <-chan Snapshot {
	return q.topic.Subscribe(ctx)
}

// Fetch runs the query once without subscribing
func (q *LiveQuery) Fetch(ctx context.Context) ([]model.Recipe, error) {
	return q.run(ctx)
}

// Running reports whether the query is currently being maintained
func (q *LiveQuery) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancel != nil
}

func (q *LiveQuery) activate() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.idleSeq++
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}

	if q.closed {
		q.topic.Finish(Snapshot{Err: ErrClosed})
		return
	}

	if q.cancel == nil {
		// A caller may still hold this query after it was released
		if !q.repo.register(q) {
			q.closed = true
			q.topic.Finish(Snapshot{Err: ErrClosed})
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel
		q.gen++
		q.repo.wg.Add(1)
		go q.loop(ctx, q.gen)
		q.logger.Debug("live query started", zap.String("query", q.key))
	}

	// The only subscriber may already have left before this hook ran
	q.scheduleStopLocked()
}

func (q *LiveQuery) idle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.scheduleStopLocked()
}

func (q *LiveQuery) scheduleStopLocked() {
	if q.cancel == nil || q.topic.Len() > 0 {
		return
	}
	q.idleSeq++
	seq := q.idleSeq
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.grace, func() { q.stopIfIdle(seq) })
}

func (q *LiveQuery) stopIfIdle(seq uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if seq != q.idleSeq || q.cancel == nil || q.topic.Len() > 0 {
		return
	}
	q.stopLocked()
	q.repo.release(q, true)

	q.logger.Debug("live query stopped", zap.String("query", q.key))
}

func (q *LiveQuery) stopLocked() {
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.topic.ClearLatest()
}

// shutdown stops the query for good and ends every subscription
func (q *LiveQuery) shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.stopLocked()
	q.topic.Finish(Snapshot{Err: ErrClosed})
}

func (q *LiveQuery) loop(ctx context.Context, gen uint64) {
	defer q.repo.wg.Done()

	// Subscribe before the first run so a change made during it is not lost
	events, err := q.notifier.Subscribe(ctx)
	if err != nil {
		q.fail(gen, fmt.Errorf("failed to watch recipe changes: %w", err))
		return
	}

	for {
		recipes, err := q.run(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			q.fail(gen, fmt.Errorf("failed to run %s query: %w", q.key, err))
			return
		}
		q.publish(gen, Snapshot{Recipes: recipes})

		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				q.fail(gen, ErrNotifierClosed)
				return
			}
		}
	}
}

func (q *LiveQuery) publish(gen uint64, snap Snapshot) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if gen != q.gen || q.cancel == nil {
		return
	}
	q.topic.Publish(snap)
}

func (q *LiveQuery) fail(gen uint64, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if gen != q.gen || q.cancel == nil {
		return
	}
	q.logger.Error("live query failed", zap.String("query", q.key), zap.Error(err))
	q.stopLocked()
	q.repo.release(q, false)
	q.topic.Finish(Snapshot{Err: err})
}
