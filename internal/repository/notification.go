package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mr0ak1/social-app/internal/model"
)

const notificationColumns = `id, recipient_id, sender_id, type, message, read, post_id, chat_id, message_id, created_at, updated_at`

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// WithCoalesceLock takes a transaction-scoped advisory lock on key, then runs fn.
// The lock is released on commit or rollback.
func (r *notificationRepository) WithCoalesceLock(ctx context.Context, key string, fn func(store NotificationStore) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("acquire coalesce lock: %w", err)
	}

	if err := fn(&notificationTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// notificationTx implements NotificationStore inside a transaction.
type notificationTx struct {
	tx *sqlx.Tx
}

func (s *notificationTx) FindRecent(ctx context.Context, q model.NotificationQuery) (*model.Notification, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + notificationColumns + ` FROM notifications
		WHERE recipient_id = $1 AND sender_id = $2 AND type = $3 AND created_at >= $4`)
	args := []interface{}{q.RecipientID, q.SenderID, q.Type, q.Since}

	if q.UnreadOnly {
		b.WriteString(` AND read = FALSE`)
	}
	if q.MatchPost {
		args = append(args, q.PostID)
		fmt.Fprintf(&b, ` AND post_id IS NOT DISTINCT FROM $%d`, len(args))
	}
	b.WriteString(` ORDER BY created_at DESC, id DESC LIMIT 1 FOR UPDATE`)

	var n model.Notification
	err := s.tx.GetContext(ctx, &n, b.String(), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find recent notification: %w", err)
	}
	return &n, nil
}

// Refresh rewrites a coalesced record and marks it unread again.
func (s *notificationTx) Refresh(ctx context.Context, id int64, rf model.NotificationRefresh) (*model.Notification, error) {
	query := `
		UPDATE notifications SET
			message = $2,
			chat_id = COALESCE($3, chat_id),
			message_id = COALESCE($4, message_id),
			read = FALSE,
			created_at = $5,
			updated_at = $5
		WHERE id = $1
		RETURNING ` + notificationColumns

	var n model.Notification
	err := s.tx.GetContext(ctx, &n, query, id, rf.Message, rf.ChatID, rf.MessageID, rf.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("refresh notification: %w", err)
	}
	return &n, nil
}

func (s *notificationTx) Insert(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, sender_id, type, message, read, post_id, chat_id, message_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6, $7, $8, $8)
		RETURNING id, read, created_at, updated_at
	`
	err := s.tx.QueryRowxContext(ctx, query,
		n.RecipientID, n.SenderID, n.Type, n.Message, n.PostID, n.ChatID, n.MessageID, n.CreatedAt,
	).Scan(&n.ID, &n.Read, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByRecipient returns a page of notifications with sender info, newest first.
func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID int64, limit, offset int) ([]model.Notification, error) {
	query := `
		SELECT n.id, n.recipient_id, n.sender_id, n.type, n.message, n.read,
		       n.post_id, n.chat_id, n.message_id, n.created_at, n.updated_at,
		       u.name AS sender_name, u.avatar_url AS sender_avatar_url
		FROM notifications n
		JOIN users u ON u.id = n.sender_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2 OFFSET $3
	`

	type notifRow struct {
		model.Notification
		SenderName      string  `db:"sender_name"`
		SenderAvatarURL *string `db:"sender_avatar_url"`
	}

	var rows []notifRow
	if err := r.db.SelectContext(ctx, &rows, query, recipientID, limit, offset); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	notifications := make([]model.Notification, len(rows))
	for i, row := range rows {
		n := row.Notification
		n.Sender = &model.UserSummary{
			ID:        row.SenderID,
			Name:      row.SenderName,
			AvatarURL: row.SenderAvatarURL,
		}
		notifications[i] = n
	}
	return notifications, nil
}

func (r *notificationRepository) CountByRecipient(ctx context.Context, recipientID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

// CountUnread returns the count of unread notifications.
func (r *notificationRepository) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND read = FALSE
	`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("get unread count: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the recipient's notifications as read.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID int64) (*model.Notification, error) {
	query := `
		UPDATE notifications SET read = TRUE, updated_at = $3
		WHERE id = $1 AND recipient_id = $2
		RETURNING ` + notificationColumns

	var n model.Notification
	err := r.db.GetContext(ctx, &n, query, id, recipientID, time.Now())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return &n, nil
}

// MarkAllRead marks all notifications for a user as read.
func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE, updated_at = NOW()
		WHERE recipient_id = $1 AND read = FALSE
	`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, recipientID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotificationNotFound
	}
	return nil
}
