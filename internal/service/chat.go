package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/model"
	"github.com/mr0ak1/social-app/internal/repository"
)

// ChatService handles direct messages between two users and the unread
// counters derived from them.
type ChatService struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	now         func() time.Time
}

func NewChatService(
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for message and seen timestamps.
func (s *ChatService) WithClock(now func() time.Time) *ChatService {
	s.now = now
	return s
}

// UnreadCountForChat counts messages in chat from the other participant
// that userID has not seen yet. Users outside the chat always get 0.
func (s *ChatService) UnreadCountForChat(ctx context.Context, chat *model.Chat, userID int64) (int, error) {
	if !chat.HasParticipant(userID) {
		return 0, nil
	}
	return s.messageRepo.CountUnseen(ctx, chat.ID, chat.OtherParticipant(userID))
}

// TotalUnreadCount sums UnreadCountForChat over every chat of userID.
func (s *ChatService) TotalUnreadCount(ctx context.Context, userID int64) (int, error) {
	chats, err := s.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0
	for i := range chats {
		n, err := s.UnreadCountForChat(ctx, &chats[i], userID)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// MarkSeen flips every unseen message from otherUserID in chat.
// Returns how many changed; a second call returns 0.
func (s *ChatService) MarkSeen(ctx context.Context, chat *model.Chat, otherUserID int64) (int64, error) {
	return s.messageRepo.MarkSeen(ctx, chat.ID, otherUserID, s.now())
}

// Send stores a message from senderID to recipientID, creating the chat on
// first contact, and notifies the recipient.
func (s *ChatService) Send(ctx context.Context, senderID, recipientID int64, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrMessageRequired
	}
	if utf8.RuneCountInString(text) > model.MaxMessageLength {
		return nil, model.ErrMessageTooLong
	}
	if senderID == recipientID {
		return nil, model.ErrCannotMessageSelf
	}

	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	chat, msg, err := s.chatRepo.AppendMessage(ctx, senderID, recipientID, text, s.now())
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"chat":      chat.ID,
		"message":   msg.ID,
		"sender":    senderID,
		"recipient": recipientID,
	}).Debug("[ChatService] Send OK")

	s.notifier.Upsert(ctx, model.NotificationInput{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        model.NotificationTypeMessage,
		Message:     model.DirectMessage(sender.Name),
		ChatID:      &chat.ID,
		MessageID:   &msg.ID,
	})

	return msg, nil
}

// Messages returns the conversation between userID and otherUserID, oldest first.
func (s *ChatService) Messages(ctx context.Context, userID, otherUserID int64) ([]model.Message, error) {
	chat, err := s.chatRepo.FindByPair(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	return s.messageRepo.ListByChat(ctx, chat.ID)
}

// Chats lists the user's conversations, most recent first, each with both
// participants (the other user first, then the caller) and the caller's
// unread count.
func (s *ChatService) Chats(ctx context.Context, userID int64) ([]model.ChatSummary, error) {
	chats, err := s.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return []model.ChatSummary{}, nil
	}

	ids := make([]int64, 0, len(chats)+1)
	ids = append(ids, userID)
	for i := range chats {
		ids = append(ids, chats[i].OtherParticipant(userID))
	}
	summaries, err := s.userRepo.GetSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.UserSummary, len(summaries))
	for _, u := range summaries {
		byID[u.ID] = u
	}

	result := make([]model.ChatSummary, 0, len(chats))
	for i := range chats {
		chat := &chats[i]
		unread, err := s.UnreadCountForChat(ctx, chat, userID)
		if err != nil {
			return nil, err
		}

		users := make([]model.UserSummary, 0, 2)
		for _, id := range []int64{chat.OtherParticipant(userID), userID} {
			if u, ok := byID[id]; ok {
				users = append(users, u)
			}
		}

		result = append(result, model.ChatSummary{
			ID:            chat.ID,
			Users:         users,
			LatestMessage: chat.Latest(),
			UnreadCount:   unread,
			UpdatedAt:     chat.UpdatedAt,
		})
	}
	return result, nil
}

// MarkSeenWith marks everything otherUserID sent to userID as seen.
func (s *ChatService) MarkSeenWith(ctx context.Context, userID, otherUserID int64) (int64, error) {
	chat, err := s.chatRepo.FindByPair(ctx, userID, otherUserID)
	if err != nil {
		return 0, err
	}
	return s.MarkSeen(ctx, chat, otherUserID)
}
