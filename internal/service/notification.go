package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/model"
	"github.com/mr0ak1/social-app/internal/queue"
	"github.com/mr0ak1/social-app/internal/repository"
)

// Notifier is the part of NotificationService other services depend on.
type Notifier interface {
	Upsert(ctx context.Context, in model.NotificationInput) *model.Notification
}

// NotificationService owns notification coalescing and the in-app inbox.
// Push delivery happens out of band: after each upsert an event is published
// to the notification stream and the worker pool sends it to Expo.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	tokenRepo repository.DeviceTokenRepository
	publisher queue.Publisher // nil when Redis is not configured
	now       func() time.Time
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	tokenRepo repository.DeviceTokenRepository,
	publisher queue.Publisher,
) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		tokenRepo: tokenRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for coalescing windows.
func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// Upsert records a notification, folding it into a recent one when the
// coalescing rule allows:
//   - message: an unread one from the same sender within 5 minutes
//   - everything else: one for the same sender and post within 24 hours,
//     read or not; it becomes unread again
//
// Self-notifications are dropped. Errors are logged and nil is returned so
// the triggering action never fails because of a notification.
func (s *NotificationService) Upsert(ctx context.Context, in model.NotificationInput) *model.Notification {
	if in.RecipientID == in.SenderID {
		return nil
	}

	log := logrus.WithFields(logrus.Fields{
		"recipient": in.RecipientID,
		"sender":    in.SenderID,
		"type":      in.Type,
	})

	now := s.now()
	query := model.NotificationQuery{
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		Type:        in.Type,
	}
	if in.Type == model.NotificationTypeMessage {
		query.Since = now.Add(-model.MessageCoalesceWindow)
		query.UnreadOnly = true
	} else {
		query.Since = now.Add(-model.ActivityCoalesceWindow)
		query.MatchPost = true
		query.PostID = in.PostID
	}

	var (
		result  *model.Notification
		created bool
	)
	err := s.notifRepo.WithCoalesceLock(ctx, in.CoalesceKey(), func(store repository.NotificationStore) error {
		existing, err := store.FindRecent(ctx, query)
		if err != nil && !errors.Is(err, model.ErrNotificationNotFound) {
			return err
		}

		if existing != nil {
			result, err = store.Refresh(ctx, existing.ID, model.NotificationRefresh{
				Message:   in.Message,
				ChatID:    in.ChatID,
				MessageID: in.MessageID,
				CreatedAt: now,
			})
			return err
		}

		n := &model.Notification{
			RecipientID: in.RecipientID,
			SenderID:    in.SenderID,
			Type:        in.Type,
			Message:     in.Message,
			PostID:      in.PostID,
			ChatID:      in.ChatID,
			MessageID:   in.MessageID,
			CreatedAt:   now,
		}
		if err := store.Insert(ctx, n); err != nil {
			return err
		}
		result, created = n, true
		return nil
	})
	if err != nil {
		log.WithError(err).Error("[NotificationService] Upsert FAILED")
		return nil
	}

	log.WithFields(logrus.Fields{"id": result.ID, "created": created}).Debug("[NotificationService] Upsert OK")
	s.publish(ctx, result, created)
	return result
}

func (s *NotificationService) publish(ctx context.Context, n *model.Notification, created bool) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, queue.NewNotificationEvent(n, created)); err != nil {
		logrus.WithError(err).WithField("notification", n.ID).Warn("[NotificationService] Publish FAILED")
	}
}

// List returns one page of the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID int64, page, limit int) (*model.NotificationPage, error) {
	if page <= 0 {
		page = model.DefaultNotificationPage
	}
	if limit <= 0 {
		limit = model.DefaultNotificationLimit
	}
	if limit > model.MaxNotificationLimit {
		limit = model.MaxNotificationLimit
	}

	notifications, err := s.notifRepo.ListByRecipient(ctx, recipientID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := s.notifRepo.CountByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifRepo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	if notifications == nil {
		notifications = []model.Notification{}
	}
	return &model.NotificationPage{
		Notifications: notifications,
		UnreadCount:   unread,
		TotalPages:    (total + limit - 1) / limit,
		CurrentPage:   page,
	}, nil
}

// UnreadCount returns the number of unread notifications (for badge display).
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID int64) (int, error) {
	return s.notifRepo.CountUnread(ctx, recipientID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID int64) (*model.Notification, error) {
	return s.notifRepo.MarkRead(ctx, id, recipientID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	return s.notifRepo.MarkAllRead(ctx, recipientID)
}

func (s *NotificationService) Delete(ctx context.Context, id, recipientID int64) error {
	return s.notifRepo.Delete(ctx, id, recipientID)
}

// RegisterDeviceToken stores or updates a device's Expo push token.
// A token already bound to another user moves to this one.
func (s *NotificationService) RegisterDeviceToken(ctx context.Context, userID int64, token, platform string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.ErrDeviceTokenRequired
	}
	if platform == "" {
		platform = model.PlatformExpo
	}
	if !model.IsValidPlatform(platform) {
		return model.ErrInvalidPlatform
	}
	return s.tokenRepo.Upsert(ctx, userID, token, platform)
}

// RemoveDeviceToken removes a device token (e.g., on logout).
func (s *NotificationService) RemoveDeviceToken(ctx context.Context, userID int64, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.ErrDeviceTokenRequired
	}
	return s.tokenRepo.Delete(ctx, userID, token)
}
