package repository

import (
	"context"
	"time"

	"github.com/mr0ak1/social-app/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetSummaries(ctx context.Context, ids []int64) ([]model.UserSummary, error)
	// Search matches name or email case-insensitively, excluding excludeID.
	Search(ctx context.Context, query string, excludeID int64, limit int) ([]model.UserSummary, error)
	UpdateProfile(ctx context.Context, id int64, req model.UpdateProfileRequest) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHashed string) error
}

type FollowRepository interface {
	// Create returns false when the follow already existed.
	Create(ctx context.Context, followerID, followeeID int64) (bool, error)
	// Delete returns false when there was nothing to delete.
	Delete(ctx context.Context, followerID, followeeID int64) (bool, error)
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error)
}

type PostRepository interface {
	Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error)
	// GetByID returns the post with owner, likes and comments loaded.
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// ListByType returns posts of one type, newest first, fully loaded.
	ListByType(ctx context.Context, postType string) ([]model.Post, error)
	UpdateCaption(ctx context.Context, postID int64, caption string) error
	Delete(ctx context.Context, postID int64) error
	// Like returns false when the user already liked the post.
	Like(ctx context.Context, postID, userID int64) (bool, error)
	// Unlike returns false when there was no like to remove.
	Unlike(ctx context.Context, postID, userID int64) (bool, error)
	HasLiked(ctx context.Context, postID, userID int64) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, postID, commentID int64) (*model.Comment, error)
	Delete(ctx context.Context, postID, commentID int64) error
}

type ChatRepository interface {
	// FindByPair returns the chat between a and b in either order.
	FindByPair(ctx context.Context, a, b int64) (*model.Chat, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Chat, error)
	// AppendMessage gets or creates the pair's chat, inserts the message and
	// updates the chat's latest-message snapshot in one transaction.
	AppendMessage(ctx context.Context, senderID, recipientID int64, text string, at time.Time) (*model.Chat, *model.Message, error)
}

type MessageRepository interface {
	ListByChat(ctx context.Context, chatID int64) ([]model.Message, error)
	// CountUnseen counts messages in the chat from senderID that are not seen.
	CountUnseen(ctx context.Context, chatID, senderID int64) (int, error)
	// MarkSeen flips unseen messages from senderID and returns how many changed.
	MarkSeen(ctx context.Context, chatID, senderID int64, at time.Time) (int64, error)
}

// NotificationStore is the set of operations available inside a coalescing lock.
type NotificationStore interface {
	FindRecent(ctx context.Context, q model.NotificationQuery) (*model.Notification, error)
	Refresh(ctx context.Context, id int64, r model.NotificationRefresh) (*model.Notification, error)
	Insert(ctx context.Context, n *model.Notification) error
}

type NotificationRepository interface {
	// WithCoalesceLock runs fn in a transaction holding a lock on key, so
	// concurrent upserts for the same window see each other's writes.
	WithCoalesceLock(ctx context.Context, key string, fn func(store NotificationStore) error) error
	ListByRecipient(ctx context.Context, recipientID int64, limit, offset int) ([]model.Notification, error)
	CountByRecipient(ctx context.Context, recipientID int64) (int, error)
	CountUnread(ctx context.Context, recipientID int64) (int, error)
	MarkRead(ctx context.Context, id, recipientID int64) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID int64) (int64, error)
	Delete(ctx context.Context, id, recipientID int64) error
}

type DeviceTokenRepository interface {
	// Upsert creates or updates a device token for a user
	Upsert(ctx context.Context, userID int64, token, platform string) error
	// GetByUserID returns all device tokens for a user
	GetByUserID(ctx context.Context, userID int64) ([]model.DeviceToken, error)
	// Delete removes a device token owned by userID
	Delete(ctx context.Context, userID int64, token string) error
}
