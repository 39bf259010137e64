package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mr0ak1/social-app/internal/model"
)

// Event types for the notification stream
const (
	EventNotificationCreated   = "notification_created"
	EventNotificationRefreshed = "notification_refreshed"
)

// Stream names
const (
	StreamNotifications = "stream:notifications"
)

// Consumer group name for push workers
const (
	ConsumerGroupPush = "push_workers"
)

// NotificationEvent is published after the coalescing service writes a
// notification. Workers turn it into a push to the recipient's devices.
type NotificationEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	NotificationID   int64  `json:"notification_id"`
	RecipientID      int64  `json:"recipient_id"`
	SenderID         int64  `json:"sender_id"`
	NotificationType string `json:"notification_type"`
	Message          string `json:"message"`
	PostID           *int64 `json:"post_id,omitempty"`
	ChatID           *int64 `json:"chat_id,omitempty"`
}

// NewNotificationEvent builds the event for a stored notification.
// created distinguishes a fresh record from a coalesced refresh.
func NewNotificationEvent(n *model.Notification, created bool) NotificationEvent {
	eventType := EventNotificationRefreshed
	if created {
		eventType = EventNotificationCreated
	}
	return NotificationEvent{
		Type:             eventType,
		Timestamp:        time.Now().Unix(),
		NotificationID:   n.ID,
		RecipientID:      n.RecipientID,
		SenderID:         n.SenderID,
		NotificationType: n.Type,
		Message:          n.Message,
		PostID:           n.PostID,
		ChatID:           n.ChatID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e NotificationEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseNotificationEvent parses an event from Redis stream message values.
func ParseNotificationEvent(values map[string]interface{}) (NotificationEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return NotificationEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event NotificationEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return NotificationEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
