package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// QueuedEvent asks a world to send an event to one of its entities.
// Event is a standard event name such as "HIT" or a custom one.
type QueuedEvent struct {
	Entity   string    `json:"entity"`
	Event    string    `json:"event"`
	Params   string    `json:"params,omitempty"`
	QueuedAt time.Time `json:"queued_at"`
}

// EventQueue holds a FIFO list of pending events per world.
type EventQueue struct {
	client *Client
	logger *slog.Logger
}

func NewEventQueue(client *Client, logger *slog.Logger) *EventQueue {
	return &EventQueue{
		client: client,
		logger: logger,
	}
}

func (q *EventQueue) queueKey(worldID uuid.UUID) string {
	return fmt.Sprintf("script-events:%s", worldID.String())
}

// Enqueue appends ev to the world's queue.
func (q *EventQueue) Enqueue(ctx context.Context, worldID uuid.UUID, ev QueuedEvent) error {
	if strings.TrimSpace(ev.Entity) == "" || strings.TrimSpace(ev.Event) == "" {
		return fmt.Errorf("queued event needs an entity and an event name")
	}
	if ev.QueuedAt.IsZero() {
		ev.QueuedAt = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal queued event: %w", err)
	}

	key := q.queueKey(worldID)
	if err := q.client.rdb.RPush(ctx, key, data).Err(); err != nil {
		q.logger.Error("Failed to enqueue script event",
			"error", err,
			"world_id", worldID,
			"key", key)
		return fmt.Errorf("failed to enqueue script event: %w", err)
	}

	q.logger.Debug("Enqueued script event",
		"world_id", worldID,
		"entity", ev.Entity,
		"event", ev.Event)
	return nil
}

// Dequeue removes and returns up to limit events from the head of the
// queue, oldest first. A limit <= 0 takes everything. Entries that do not
// decode are logged and dropped.
func (q *EventQueue) Dequeue(ctx context.Context, worldID uuid.UUID, limit int) ([]QueuedEvent, error) {
	key := q.queueKey(worldID)

	end := int64(limit - 1)
	if limit <= 0 {
		end = -1
	}

	pipe := q.client.rdb.TxPipeline()
	lrange := pipe.LRange(ctx, key, 0, end)
	if limit <= 0 {
		pipe.Del(ctx, key)
	} else {
		pipe.LTrim(ctx, key, int64(limit), -1)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		q.logger.Error("Failed to dequeue script events",
			"error", err,
			"world_id", worldID,
			"key", key)
		return nil, fmt.Errorf("failed to dequeue script events: %w", err)
	}

	raw := lrange.Val()
	events := make([]QueuedEvent, 0, len(raw))
	for _, item := range raw {
		var ev QueuedEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			q.logger.Warn("Dropping malformed script event",
				"error", err,
				"world_id", worldID,
				"item", truncate(item, 50))
			continue
		}
		events = append(events, ev)
	}

	if len(raw) > 0 {
		q.logger.Debug("Dequeued script events",
			"world_id", worldID,
			"count", len(events))
	}
	return events, nil
}

// Clear removes all pending events for a world
func (q *EventQueue) Clear(ctx context.Context, worldID uuid.UUID) error {
	key := q.queueKey(worldID)
	if err := q.client.rdb.Del(ctx, key).Err(); err != nil {
		q.logger.Error("Failed to clear script event queue",
			"error", err,
			"world_id", worldID,
			"key", key)
		return fmt.Errorf("failed to clear script event queue: %w", err)
	}
	return nil
}

// Depth returns the number of events queued for a world
func (q *EventQueue) Depth(ctx context.Context, worldID uuid.UUID) (int, error) {
	count, err := q.client.rdb.LLen(ctx, q.queueKey(worldID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
