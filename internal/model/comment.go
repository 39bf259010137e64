package model

import (
	"errors"
	"time"
)

// Comment is one entry in a post's ordered comment list.
// AuthorName is a snapshot taken when the comment was written.
type Comment struct {
	ID         int64     `db:"id" json:"id"`
	PostID     int64     `db:"post_id" json:"-"`
	UserID     int64     `db:"user_id" json:"user"`
	AuthorName string    `db:"author_name" json:"name"`
	Text       string    `db:"text" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// CreateCommentRequest is the body of POST /post/comment/{id}
type CreateCommentRequest struct {
	Comment string `json:"comment"`
}

// DeleteCommentRequest is the body of DELETE /post/comment/{id}
type DeleteCommentRequest struct {
	CommentID int64 `json:"commentId"`
}

const (
	MaxCommentLength = 2200
)

// Comment errors
var (
	ErrCommentNotFound    = errors.New("comment not found")
	ErrNotAllowedToDelete = errors.New("you are not allowed to delete this comment")
	ErrCommentRequired    = errors.New("comment is required")
	ErrCommentTooLong     = errors.New("comment too long")
	ErrCommentIDRequired  = errors.New("please give comment id")
)
