package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mr0ak1/social-app/internal/model"
)

const chatColumns = `id, user_low, user_high, latest_text, latest_sender_id, latest_at, created_at, updated_at`

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) FindByPair(ctx context.Context, a, b int64) (*model.Chat, error) {
	low, high := model.ChatPair(a, b)
	query := `SELECT ` + chatColumns + ` FROM chats WHERE user_low = $1 AND user_high = $2`

	var chat model.Chat
	err := r.db.GetContext(ctx, &chat, query, low, high)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return &chat, nil
}

// ListByUser returns the user's chats, most recently active first.
func (r *chatRepository) ListByUser(ctx context.Context, userID int64) ([]model.Chat, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM chats
		WHERE user_low = $1 OR user_high = $1
		ORDER BY updated_at DESC, id DESC
	`
	chats := []model.Chat{}
	if err := r.db.SelectContext(ctx, &chats, query, userID); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (r *chatRepository) AppendMessage(ctx context.Context, senderID, recipientID int64, text string, at time.Time) (*model.Chat, *model.Message, error) {
	low, high := model.ChatPair(senderID, recipientID)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The no-op update makes the conflict path return the row and lock it.
	var chatID int64
	err = tx.GetContext(ctx, &chatID, `
		INSERT INTO chats (user_low, user_high, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_low, user_high) DO UPDATE SET updated_at = chats.updated_at
		RETURNING id
	`, low, high, at)
	if err != nil {
		return nil, nil, fmt.Errorf("get or create chat: %w", err)
	}

	var msg model.Message
	err = tx.GetContext(ctx, &msg, `
		INSERT INTO messages (chat_id, sender_id, text, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, chat_id, sender_id, text, seen, seen_at, created_at
	`, chatID, senderID, text, at)
	if err != nil {
		return nil, nil, fmt.Errorf("insert message: %w", err)
	}

	var chat model.Chat
	err = tx.GetContext(ctx, &chat, `
		UPDATE chats SET
			latest_text = $2,
			latest_sender_id = $3,
			latest_at = $4,
			updated_at = $4
		WHERE id = $1
		RETURNING `+chatColumns, chatID, msg.Text, msg.SenderID, msg.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("update latest message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &chat, &msg, nil
}
