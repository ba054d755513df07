package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type sessionNotificationJob struct {
	SessionID  uint      `json:"session_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// RedisQueueNotifier pushes notification jobs onto a redis list consumed by
// an external worker. At-least-once, unordered.
type RedisQueueNotifier struct {
	client   redis.UniversalClient
	queueKey string
}

func NewRedisQueueNotifier(client redis.UniversalClient, queueKey string) *RedisQueueNotifier {
	if queueKey == "" {
		queueKey = "jobs:session_notifications"
	}
	return &RedisQueueNotifier{client: client, queueKey: queueKey}
}

func (n *RedisQueueNotifier) NotifySessionParticipants(ctx context.Context, sessionID uint) error {
	payload, err := json.Marshal(sessionNotificationJob{
		SessionID:  sessionID,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification job: %w", err)
	}
	if err := n.client.LPush(ctx, n.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notification job: %w", err)
	}
	return nil
}
