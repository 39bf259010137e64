package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mr0ak1/social-app/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create appends a comment to a post's list.
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO post_comments (post_id, user_id, author_name, text)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.PostID, c.UserID, c.AuthorName, c.Text).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// GetByID finds a comment on a specific post.
func (r *commentRepository) GetByID(ctx context.Context, postID, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, post_id, user_id, author_name, text, created_at
		FROM post_comments
		WHERE id = $1 AND post_id = $2
	`
	var c model.Comment
	err := r.db.GetContext(ctx, &c, query, commentID, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// Delete removes a comment from a post.
func (r *commentRepository) Delete(ctx context.Context, postID, commentID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM post_comments WHERE id = $1 AND post_id = $2`, commentID, postID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}
