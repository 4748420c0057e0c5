package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	EventImageCreated = "image.created"
	EventImageDeleted = "image.deleted"

	appID = "graphics-server"
)

// ImageEvent is published after an image is created or deleted.
type ImageEvent struct {
	Type       string    `json:"type"`
	ImageID    int64     `json:"imageId"`
	SpaceID    int64     `json:"spaceId"`
	UserID     int64     `json:"userId"`
	ModelName  string    `json:"modelName"`
	Seed       int32     `json:"seed"`
	StorageKey string    `json:"s3Key"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ImageEventPublisher publishes image lifecycle events.
type ImageEventPublisher interface {
	PublishImageEvent(ctx context.Context, event ImageEvent) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishImageEvent(context.Context, ImageEvent) error { return nil }

type rabbitMQPublisher struct {
	mu        sync.Mutex
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQPublisher opens a channel on conn and declares a durable queue.
func NewRabbitMQPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (ImageEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("image event publisher: failed to open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("image event publisher: failed to declare queue '%s': %w", queueName, err)
	}
	return &rabbitMQPublisher{channel: ch, queueName: queueName, logger: logger.Named("ImageEventPublisher")}, nil
}

func (p *rabbitMQPublisher) PublishImageEvent(ctx context.Context, event ImageEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal image event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    event.OccurredAt,
			Type:         event.Type,
			AppId:        appID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	p.logger.Debug("Image event published", zap.String("type", event.Type), zap.Int64("image_id", event.ImageID))
	return nil
}

// Connect dials RabbitMQ, retrying while the broker starts.
func Connect(ctx context.Context, url string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp.Connection, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("rabbitmq unreachable after %d attempts: %w", maxRetries, lastErr)
}
