package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresChannel is the LISTEN/NOTIFY channel recipe changes are announced on
const PostgresChannel = "recipes_changed"

// PostgresNotifier announces changes with pg_notify and listens with a lib/pq listener
type PostgresNotifier struct {
	db     *gorm.DB
	dsn    string
	logger *zap.Logger
}

// NewPostgresNotifier creates a notifier that publishes through db and listens on dsn
func NewPostgresNotifier(db *gorm.DB, dsn string, logger *zap.Logger) *PostgresNotifier {
	return &PostgresNotifier{db: db, dsn: dsn, logger: logger}
}

// Publish sends a notification on the recipe channel
func (n *PostgresNotifier) Publish(ctx context.Context) error {
	if err := n.db.WithContext(ctx).Exec("SELECT pg_notify(?, '')", PostgresChannel).Error; err != nil {
		return fmt.Errorf("failed to notify %s: %w", PostgresChannel, err)
	}
	return nil
}

// Subscribe opens a dedicated listener connection until ctx is done
func (n *PostgresNotifier) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	listener := pq.NewListener(n.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			n.logger.Warn("recipe listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	if err := listener.Listen(PostgresChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", PostgresChannel, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer listener.Close()

		for {
			select {
			case <-ctx.Done():
				return
			// A nil notification follows a reconnect; changes may have been missed
			case _, ok := <-listener.Notify:
				if !ok {
					return
				}
				signal(out)
			case <-time.After(90 * time.Second):
				go listener.Ping()
			}
		}
	}()

	return out, nil
}

// Close is a no-op; listeners are closed with their subscription context
func (n *PostgresNotifier) Close() error {
	return nil
}
