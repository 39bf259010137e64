package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/model"
	"github.com/mr0ak1/social-app/internal/queue"
)

// DeviceTokenProvider abstracts the device token repository so workers
// don't depend on the DB directly.
type DeviceTokenProvider interface {
	GetByUserID(ctx context.Context, userID int64) ([]model.DeviceToken, error)
}

// Pusher delivers a push notification to device tokens.
type Pusher interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]interface{}) error
}

// Handler turns notification events into pushes.
type Handler struct {
	tokens DeviceTokenProvider
	pusher Pusher // expo tokens
	native Pusher // ios/android tokens; nil skips them
}

// NewHandler creates a new event handler that pushes through Expo.
func NewHandler(tokens DeviceTokenProvider, pusher Pusher) *Handler {
	return &Handler{
		tokens: tokens,
		pusher: pusher,
	}
}

// WithNativePusher routes ios and android tokens to p.
func (h *Handler) WithNativePusher(p Pusher) *Handler {
	h.native = p
	return h
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.NotificationEvent) error {
	startTime := time.Now()
	log := logrus.WithFields(logrus.Fields{
		"type":         event.Type,
		"notification": event.NotificationID,
		"recipient":    event.RecipientID,
	})

	var err error
	switch event.Type {
	case queue.EventNotificationCreated, queue.EventNotificationRefreshed:
		err = h.handleNotification(ctx, event)
	default:
		log.Warn("[Worker] Unknown event type")
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.WithError(err).WithField("duration", time.Since(startTime)).Error("[Worker] HandleEvent FAILED")
		return err
	}

	log.WithField("duration", time.Since(startTime)).Debug("[Worker] HandleEvent OK")
	return nil
}

// handleNotification sends the notification text to every device of the recipient.
func (h *Handler) handleNotification(ctx context.Context, event queue.NotificationEvent) error {
	tokens, err := h.tokens.GetByUserID(ctx, event.RecipientID)
	if err != nil {
		return fmt.Errorf("get device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	var expoTokens, nativeTokens []string
	for _, t := range tokens {
		if t.Platform == model.PlatformExpo || t.Platform == "" {
			expoTokens = append(expoTokens, t.Token)
		} else {
			nativeTokens = append(nativeTokens, t.Token)
		}
	}

	data := map[string]interface{}{
		"type":            event.NotificationType,
		"notification_id": event.NotificationID,
		"sender_id":       event.SenderID,
	}
	if event.PostID != nil {
		data["post_id"] = *event.PostID
	}
	if event.ChatID != nil {
		data["chat_id"] = *event.ChatID
	}

	title := pushTitle(event.NotificationType)
	if len(expoTokens) > 0 {
		if err := h.pusher.SendToTokens(ctx, expoTokens, title, event.Message, data); err != nil {
			return fmt.Errorf("send expo push: %w", err)
		}
	}
	if len(nativeTokens) > 0 {
		if h.native == nil {
			logrus.WithField("tokens", len(nativeTokens)).Debug("[Worker] No native pusher, skipping tokens")
			return nil
		}
		if err := h.native.SendToTokens(ctx, nativeTokens, title, event.Message, data); err != nil {
			return fmt.Errorf("send native push: %w", err)
		}
	}
	return nil
}

// pushTitle creates the title for a push notification.
func pushTitle(notifType string) string {
	switch notifType {
	case model.NotificationTypeFollow:
		return "New Follower"
	case model.NotificationTypeUnfollow:
		return "Follower Update"
	case model.NotificationTypeLike:
		return "New Like"
	case model.NotificationTypeComment:
		return "New Comment"
	case model.NotificationTypeMessage:
		return "New Message"
	default:
		return "Notification"
	}
}
