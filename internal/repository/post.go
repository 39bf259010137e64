package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mr0ak1/social-app/internal/model"
)

const postColumns = `id, user_id, caption, media_url, media_key, type, created_at, updated_at`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post.
func (r *postRepository) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, caption, media_url, media_key, type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + postColumns

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, userID, req.Caption, req.MediaURL, req.MediaKey, req.Type)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	post.Likes = []int64{}
	post.Comments = []model.Comment{}
	return &post, nil
}

// GetByID retrieves a single post with owner, likes and comments.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	posts := []model.Post{post}
	if err := r.hydrate(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListByType returns every post of the given type, newest first.
func (r *postRepository) ListByType(ctx context.Context, postType string) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE type = $1 ORDER BY created_at DESC, id DESC`

	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, postType); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if err := r.hydrate(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// hydrate loads owners, likes and comments for posts in three batch queries.
func (r *postRepository) hydrate(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]int64, len(posts))
	ownerSet := make(map[int64]struct{}, len(posts))
	ownerIDs := make([]int64, 0, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
		if _, ok := ownerSet[p.UserID]; !ok {
			ownerSet[p.UserID] = struct{}{}
			ownerIDs = append(ownerIDs, p.UserID)
		}
	}

	var owners []model.UserSummary
	err := r.db.SelectContext(ctx, &owners, `SELECT id, name, avatar_url FROM users WHERE id = ANY($1)`, pq.Array(ownerIDs))
	if err != nil {
		return fmt.Errorf("get post owners: %w", err)
	}
	ownerMap := make(map[int64]model.UserSummary, len(owners))
	for _, o := range owners {
		ownerMap[o.ID] = o
	}

	type likeRow struct {
		PostID int64 `db:"post_id"`
		UserID int64 `db:"user_id"`
	}
	var likes []likeRow
	err = r.db.SelectContext(ctx, &likes, `
		SELECT post_id, user_id FROM post_likes
		WHERE post_id = ANY($1)
		ORDER BY created_at ASC
	`, pq.Array(postIDs))
	if err != nil {
		return fmt.Errorf("get post likes: %w", err)
	}
	likeMap := make(map[int64][]int64)
	for _, l := range likes {
		likeMap[l.PostID] = append(likeMap[l.PostID], l.UserID)
	}

	var comments []model.Comment
	err = r.db.SelectContext(ctx, &comments, `
		SELECT id, post_id, user_id, author_name, text, created_at FROM post_comments
		WHERE post_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`, pq.Array(postIDs))
	if err != nil {
		return fmt.Errorf("get post comments: %w", err)
	}
	commentMap := make(map[int64][]model.Comment)
	for _, c := range comments {
		commentMap[c.PostID] = append(commentMap[c.PostID], c)
	}

	for i := range posts {
		if owner, ok := ownerMap[posts[i].UserID]; ok {
			o := owner
			posts[i].Owner = &o
		}
		posts[i].Likes = likeMap[posts[i].ID]
		if posts[i].Likes == nil {
			posts[i].Likes = []int64{}
		}
		posts[i].Comments = commentMap[posts[i].ID]
		if posts[i].Comments == nil {
			posts[i].Comments = []model.Comment{}
		}
	}
	return nil
}

// UpdateCaption replaces a post's caption.
func (r *postRepository) UpdateCaption(ctx context.Context, postID int64, caption string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET caption = $2, updated_at = NOW() WHERE id = $1
	`, postID, caption)
	if err != nil {
		return fmt.Errorf("update caption: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// Delete removes a post; likes and comments go with it.
func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// Like inserts a like record.
func (r *postRepository) Like(ctx context.Context, postID, userID int64) (bool, error) {
	query := `
		INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Unlike deletes a like record.
func (r *postRepository) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	query := `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *postRepository) HasLiked(ctx context.Context, postID, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)`
	var liked bool
	if err := r.db.GetContext(ctx, &liked, query, postID, userID); err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return liked, nil
}
