package model

import (
	"errors"
	"time"
)

// Post types
const (
	PostTypePost = "post"
	PostTypeReel = "reel"
)

// Post represents a post or reel with its likes and comments.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Caption   string    `db:"caption" json:"caption"`
	MediaURL  string    `db:"media_url" json:"mediaUrl"`
	MediaKey  string    `db:"media_key" json:"-"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Joined fields (not in posts table)
	Owner    *UserSummary `json:"owner,omitempty"`
	Likes    []int64      `json:"likes"`
	Comments []Comment    `json:"comments"`
}

// HasLike reports whether userID is in the post's likes.
func (p *Post) HasLike(userID int64) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest carries a post after its media has been stored.
type CreatePostRequest struct {
	Type     string
	Caption  string
	MediaURL string
	MediaKey string
}

// UpdateCaptionRequest is the body of PUT /post/{id}
type UpdateCaptionRequest struct {
	Caption string `json:"caption"`
}

// AllPostsResponse is the body of GET /post/all
type AllPostsResponse struct {
	Posts []Post `json:"post"`
	Reels []Post `json:"reel"`
}

// LikeResult reports which way a like toggle went.
type LikeResult struct {
	Liked bool
}

const (
	MaxPostCaptionLength = 2200
	PostMediaFolder      = "posts"
	ReelMediaFolder      = "reels"
)

// IsValidPostType reports whether t is post or reel.
func IsValidPostType(t string) bool {
	return t == PostTypePost || t == PostTypeReel
}

// Post errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostOwner    = errors.New("not the owner of this post")
	ErrNoMediaProvided = errors.New("no file to upload")
	ErrInvalidPostType = errors.New("type must be post or reel")
	ErrCaptionTooLong  = errors.New("caption too long")
)
