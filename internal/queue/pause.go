package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func (q *EventQueue) pauseKey(worldID uuid.UUID) string {
	return fmt.Sprintf("world-paused:%s", worldID.String())
}

// SetPaused records whether a world's worker should hold back gameplay
// events. Queued events keep arriving while a world is paused.
func (q *EventQueue) SetPaused(ctx context.Context, worldID uuid.UUID, paused bool) error {
	key := q.pauseKey(worldID)
	var err error
	if paused {
		err = q.client.rdb.Set(ctx, key, "1", 0).Err()
	} else {
		err = q.client.rdb.Del(ctx, key).Err()
	}
	if err != nil {
		q.logger.Error("Failed to set world pause",
			"error", err,
			"world_id", worldID,
			"paused", paused)
		return fmt.Errorf("failed to set world pause: %w", err)
	}
	q.logger.Info("World pause changed", "world_id", worldID, "paused", paused)
	return nil
}

// Paused reports whether a world is paused.
func (q *EventQueue) Paused(ctx context.Context, worldID uuid.UUID) (bool, error) {
	err := q.client.rdb.Get(ctx, q.pauseKey(worldID)).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to read world pause: %w", err)
	}
	return true, nil
}
