package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mr0ak1/social-app/internal/model"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

// ListByChat returns the chat's messages oldest first.
func (r *messageRepository) ListByChat(ctx context.Context, chatID int64) ([]model.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, text, seen, seen_at, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
	`
	messages := []model.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, chatID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) CountUnseen(ctx context.Context, chatID, senderID int64) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE chat_id = $1 AND sender_id = $2 AND seen = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, chatID, senderID); err != nil {
		return 0, fmt.Errorf("count unseen messages: %w", err)
	}
	return count, nil
}

// MarkSeen only touches unseen rows, so a repeat call changes nothing.
func (r *messageRepository) MarkSeen(ctx context.Context, chatID, senderID int64, at time.Time) (int64, error) {
	query := `
		UPDATE messages SET seen = TRUE, seen_at = $3
		WHERE chat_id = $1 AND sender_id = $2 AND seen = FALSE
	`
	result, err := r.db.ExecContext(ctx, query, chatID, senderID, at)
	if err != nil {
		return 0, fmt.Errorf("mark messages seen: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}
