package model

import (
	"errors"
	"time"
)

// Chat is the conversation between exactly two users.
// The pair is stored ordered (UserLow < UserHigh) so it is unique regardless
// of who wrote first.
type Chat struct {
	ID             int64      `db:"id" json:"id"`
	UserLow        int64      `db:"user_low" json:"-"`
	UserHigh       int64      `db:"user_high" json:"-"`
	LatestText     *string    `db:"latest_text" json:"-"`
	LatestSenderID *int64     `db:"latest_sender_id" json:"-"`
	LatestAt       *time.Time `db:"latest_at" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// ChatPair orders two user ids the way chats are keyed.
func ChatPair(a, b int64) (low, high int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// HasParticipant reports whether userID is one of the two users.
func (c *Chat) HasParticipant(userID int64) bool {
	return c.UserLow == userID || c.UserHigh == userID
}

// OtherParticipant returns the user on the other side of the chat from userID.
func (c *Chat) OtherParticipant(userID int64) int64 {
	if c.UserLow == userID {
		return c.UserHigh
	}
	return c.UserLow
}

// LatestMessage is the denormalized snapshot of the newest message.
type LatestMessage struct {
	Text      string    `json:"text"`
	SenderID  int64     `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
}

// Latest returns the snapshot or nil when the chat has no messages yet.
func (c *Chat) Latest() *LatestMessage {
	if c.LatestText == nil || c.LatestSenderID == nil || c.LatestAt == nil {
		return nil
	}
	return &LatestMessage{
		Text:      *c.LatestText,
		SenderID:  *c.LatestSenderID,
		CreatedAt: *c.LatestAt,
	}
}

// Message belongs to one chat; only its seen state ever changes.
type Message struct {
	ID        int64      `db:"id" json:"id"`
	ChatID    int64      `db:"chat_id" json:"chatId"`
	SenderID  int64      `db:"sender_id" json:"sender"`
	Text      string     `db:"text" json:"text"`
	Seen      bool       `db:"seen" json:"seen"`
	SeenAt    *time.Time `db:"seen_at" json:"seenAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

// ChatSummary is one row of GET /message/chats
type ChatSummary struct {
	ID            int64          `json:"id"`
	Users         []UserSummary  `json:"users"`
	LatestMessage *LatestMessage `json:"latestMessage,omitempty"`
	UnreadCount   int            `json:"unreadCount"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// SendMessageRequest is the body of POST /message/send/{recipientId}
type SendMessageRequest struct {
	Message string `json:"message"`
}

const (
	MaxMessageLength = 5000
)

// Chat errors
var (
	ErrChatNotFound      = errors.New("no chat with this user")
	ErrMessageRequired   = errors.New("message is required")
	ErrMessageTooLong    = errors.New("message too long")
	ErrCannotMessageSelf = errors.New("cannot send a message to yourself")
)
