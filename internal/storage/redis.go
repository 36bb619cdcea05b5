package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/scriptevent/pkg/script"
	"github.com/jwebster45206/scriptevent/pkg/storage"
)

// RedisStorage keeps each save as one hash, "save:<uuid>", with a field
// per scope holding the JSON-encoded bindings.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage connects to redisURL. A positive ttl expires a save that
// has not been written for that long.
func NewRedisStorage(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func saveKey(id uuid.UUID) string {
	return "save:" + id.String()
}

func (r *RedisStorage) SaveVars(ctx context.Context, saveID uuid.UUID, scope string, vars []script.Var) error {
	if vars == nil {
		vars = []script.Var{}
	}
	data, err := json.Marshal(vars)
	if err != nil {
		r.logger.Error("Failed to marshal vars", "save", saveID, "scope", scope, "error", err)
		return fmt.Errorf("failed to marshal vars: %w", err)
	}

	key := saveKey(saveID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, scope, data)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save vars", "save", saveID, "scope", scope, "error", err)
		return fmt.Errorf("failed to save vars: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadVars(ctx context.Context, saveID uuid.UUID, scope string) ([]script.Var, error) {
	data, err := r.client.HGet(ctx, saveKey(saveID), scope).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to load vars", "save", saveID, "scope", scope, "error", err)
		return nil, fmt.Errorf("failed to load vars: %w", err)
	}

	var vars []script.Var
	if err := json.Unmarshal(data, &vars); err != nil {
		r.logger.Error("Failed to unmarshal vars", "save", saveID, "scope", scope, "error", err)
		return nil, fmt.Errorf("failed to unmarshal vars: %w", err)
	}
	return vars, nil
}

func (r *RedisStorage) DeleteSave(ctx context.Context, saveID uuid.UUID) error {
	if err := r.client.Del(ctx, saveKey(saveID)).Err(); err != nil {
		r.logger.Error("Failed to delete save", "save", saveID, "error", err)
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListScopes(ctx context.Context, saveID uuid.UUID) ([]string, error) {
	scopes, err := r.client.HKeys(ctx, saveKey(saveID)).Result()
	if err != nil && err != redis.Nil {
		r.logger.Error("Failed to list scopes", "save", saveID, "error", err)
		return nil, fmt.Errorf("failed to list scopes: %w", err)
	}
	sort.Strings(scopes)
	return scopes, nil
}
