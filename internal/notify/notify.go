// Package notify is the out-of-band channel for failures that happen after
// an optimistic return, mainly record store writes that were not awaited by
// the original caller.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Stream is the Redis stream notifications are mirrored to when a Redis
// client is configured.
const Stream = "mediguard:notifications"

// Notification is one asynchronous failure report for a user's UI.
type Notification struct {
	UserID  string    `json:"userId"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier queues notifications per user until the UI drains them. When a
// Redis client is provided, each notification is also published to Stream so
// other consumers can observe write failures.
type Notifier struct {
	mu      sync.Mutex
	pending map[string][]Notification

	rdb    *redis.Client
	logger *zap.Logger
}

// New creates a notifier. rdb may be nil to disable the Redis mirror.
func New(rdb *redis.Client, logger *zap.Logger) *Notifier {
	return &Notifier{
		pending: make(map[string][]Notification),
		rdb:     rdb,
		logger:  logger,
	}
}

// Publish records a notification for the user and mirrors it to Redis when
// configured. Mirror failures are logged, not propagated: the in-memory
// queue is the source of truth for the UI.
func (n *Notifier) Publish(ctx context.Context, notification Notification) {
	if notification.At.IsZero() {
		notification.At = time.Now()
	}

	n.mu.Lock()
	n.pending[notification.UserID] = append(n.pending[notification.UserID], notification)
	n.mu.Unlock()

	n.logger.Warn("async failure reported",
		zap.String("user_id", notification.UserID),
		zap.String("kind", notification.Kind),
		zap.String("message", notification.Message),
	)

	if n.rdb == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		n.logger.Error("failed to marshal notification", zap.Error(err))
		return
	}
	if err := n.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: Stream,
		Values: map[string]interface{}{"data": string(payload)},
	}).Err(); err != nil {
		n.logger.Error("failed to publish notification to redis", zap.Error(err))
	}
}

// Drain returns and clears the user's pending notifications.
func (n *Notifier) Drain(userID string) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	pending := n.pending[userID]
	delete(n.pending, userID)
	if pending == nil {
		return []Notification{}
	}
	return pending
}
