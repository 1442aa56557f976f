package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	webhookQueueKey = "webhook_events"
)

// WebhookEvent - событие смены статуса отчета по голосам сообщества
type WebhookEvent struct {
	IncidentID   uuid.UUID `json:"incident_id"`
	IncidentType string    `json:"incident_type"`
	OldStatus    string    `json:"old_status"`
	NewStatus    string    `json:"new_status"`
	ActorID      string    `json:"actor_id"`
	Kind         string    `json:"kind"` // verify | dispute | resolve
	Timestamp    time.Time `json:"timestamp"`
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
