package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event NotificationEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	maxLen int64
}

// DefaultStreamMaxLen caps the stream so acked events do not pile up forever.
const DefaultStreamMaxLen = 10000

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, maxLen: DefaultStreamMaxLen}
}

// Publish adds an event to the stream using XADD with approximate trimming.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event NotificationEvent) (string, error) {
	startTime := time.Now()
	log := logrus.WithFields(logrus.Fields{"stream": stream, "type": event.Type})

	values, err := event.ToMap()
	if err != nil {
		log.WithError(err).Error("[Publisher] Publish FAILED")
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		log.WithError(err).Error("[Publisher] Publish FAILED")
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.WithFields(logrus.Fields{
		"msg_id":       messageID,
		"notification": event.NotificationID,
		"recipient":    event.RecipientID,
		"duration":     time.Since(startTime),
	}).Debug("[Publisher] Publish OK")

	return messageID, nil
}
