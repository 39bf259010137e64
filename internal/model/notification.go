package model

import (
	"errors"
	"fmt"
	"time"
)

// Notification types
const (
	NotificationTypeFollow   = "follow"
	NotificationTypeUnfollow = "unfollow"
	NotificationTypeLike     = "like"
	NotificationTypeComment  = "comment"
	NotificationTypeMessage  = "message"
)

// Coalescing windows: a repeat within the window refreshes the existing
// record instead of inserting a new one.
const (
	MessageCoalesceWindow  = 5 * time.Minute
	ActivityCoalesceWindow = 24 * time.Hour
)

// Notification represents a single notification record in the database.
type Notification struct {
	ID          int64     `db:"id" json:"id"`
	RecipientID int64     `db:"recipient_id" json:"recipient"`
	SenderID    int64     `db:"sender_id" json:"senderId"`
	Type        string    `db:"type" json:"type"`
	Message     string    `db:"message" json:"message"`
	Read        bool      `db:"read" json:"read"`
	PostID      *int64    `db:"post_id" json:"postId,omitempty"`
	ChatID      *int64    `db:"chat_id" json:"chatId,omitempty"`
	MessageID   *int64    `db:"message_id" json:"messageId,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	// Joined field for display
	Sender *UserSummary `json:"sender,omitempty"`
}

// NotificationInput is what a triggering action hands to the coalescing service.
type NotificationInput struct {
	RecipientID int64
	SenderID    int64
	Type        string
	Message     string
	PostID      *int64
	ChatID      *int64
	MessageID   *int64
}

// CoalesceKey identifies the window an input falls into.
// Inputs with equal keys may coalesce into one record.
func (in NotificationInput) CoalesceKey() string {
	post := "-"
	if in.Type != NotificationTypeMessage && in.PostID != nil {
		post = fmt.Sprintf("%d", *in.PostID)
	}
	return fmt.Sprintf("notif:%d:%d:%s:%s", in.RecipientID, in.SenderID, in.Type, post)
}

// NotificationQuery selects the newest notification eligible for coalescing.
type NotificationQuery struct {
	RecipientID int64
	SenderID    int64
	Type        string
	Since       time.Time
	UnreadOnly  bool
	// MatchPost compares PostID too, with nil matching only a null post.
	MatchPost bool
	PostID    *int64
}

// NotificationRefresh is applied to a coalesced record.
type NotificationRefresh struct {
	Message   string
	ChatID    *int64
	MessageID *int64
	CreatedAt time.Time
}

// NotificationPage is the body of GET /notifications
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
	TotalPages    int            `json:"totalPages"`
	CurrentPage   int            `json:"currentPage"`
}

// Pagination defaults
const (
	DefaultNotificationPage  = 1
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 50
)

// ErrNotificationNotFound is returned when no notification matches.
var ErrNotificationNotFound = errors.New("notification not found")

// Message texts shown to the recipient.
func FollowMessage(name string) string   { return name + " started following you" }
func UnfollowMessage(name string) string { return name + " unfollowed you" }
func LikeMessage(name string) string     { return name + " liked your post" }
func CommentMessage(name string) string  { return name + " commented on your post" }
func DirectMessage(name string) string   { return name + " sent you a message" }
