package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeDispatched EventType = "script.dispatched"
	EventTypeFailed     EventType = "script.failed"
	EventTypeSpeech     EventType = "world.speech"
	EventTypeTick       EventType = "world.tick"
)

// Event is one message on a world's channel.
type Event struct {
	Type    EventType      `json:"type"`
	WorldID string         `json:"world_id"`
	Entity  string         `json:"entity,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes world output to Redis Pub/Sub.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel returns the Pub/Sub channel of a world.
func Channel(worldID uuid.UUID) string {
	return fmt.Sprintf("world-events:%s", worldID.String())
}

// PublishDispatched reports the result of one queued event.
func (b *Broadcaster) PublishDispatched(ctx context.Context, worldID uuid.UUID, entity, event, result string) error {
	return b.publish(ctx, worldID, Event{
		Type:   EventTypeDispatched,
		Entity: entity,
		Data: map[string]any{
			"event":  event,
			"result": result,
		},
	})
}

// PublishFailed reports a queued event that could not be delivered.
func (b *Broadcaster) PublishFailed(ctx context.Context, worldID uuid.UUID, entity, event, errorMsg string) error {
	return b.publish(ctx, worldID, Event{
		Type:   EventTypeFailed,
		Entity: entity,
		Data: map[string]any{
			"event": event,
			"error": errorMsg,
		},
	})
}

// PublishSpeech forwards a line spoken by a script.
func (b *Broadcaster) PublishSpeech(ctx context.Context, worldID uuid.UUID, speaker, text string, localized bool) error {
	return b.publish(ctx, worldID, Event{
		Type:   EventTypeSpeech,
		Entity: speaker,
		Data: map[string]any{
			"text":      text,
			"localized": localized,
		},
	})
}

// PublishTick reports how many timers fired in one tick.
func (b *Broadcaster) PublishTick(ctx context.Context, worldID uuid.UUID, fired int) error {
	return b.publish(ctx, worldID, Event{
		Type: EventTypeTick,
		Data: map[string]any{"fired": fired},
	})
}

func (b *Broadcaster) publish(ctx context.Context, worldID uuid.UUID, event Event) error {
	event.WorldID = worldID.String()
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, Channel(worldID), data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "type", event.Type, "world_id", event.WorldID)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
