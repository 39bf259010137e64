package handler

import (
	"context"
	"net/http"

	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/model"
)

// Messenger is what the message endpoints need from the chat service.
type Messenger interface {
	Send(ctx context.Context, senderID, recipientID int64, text string) (*model.Message, error)
	Messages(ctx context.Context, userID, otherUserID int64) ([]model.Message, error)
	Chats(ctx context.Context, userID int64) ([]model.ChatSummary, error)
	MarkSeenWith(ctx context.Context, userID, otherUserID int64) (int64, error)
	TotalUnreadCount(ctx context.Context, userID int64) (int, error)
}

type MessageHandler struct {
	chats Messenger
}

func NewMessageHandler(chats Messenger) *MessageHandler {
	return &MessageHandler{chats: chats}
}

type modifiedResponse struct {
	Message       string `json:"message"`
	ModifiedCount int64  `json:"modifiedCount"`
}

// Send handles POST /message/send/{recipientId} with {message}.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	senderID, ok := currentUser(w, r)
	if !ok {
		return
	}
	recipientID, ok := idParam(w, r, "recipientId")
	if !ok {
		return
	}
	var req model.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.chats.Send(r.Context(), senderID, recipientID, req.Message)
	if err != nil {
		writeServiceError(w, r, "SendMessage", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, msg)
}

// Get handles GET /message/get/{id}
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	otherID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	messages, err := h.chats.Messages(r.Context(), userID, otherID)
	if err != nil {
		writeServiceError(w, r, "GetMessages", err)
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	httputil.WriteJSON(w, http.StatusOK, messages)
}

// Chats handles GET /message/chats
func (h *MessageHandler) Chats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	chats, err := h.chats.Chats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "Chats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, chats)
}

// Seen handles PUT /message/seen/{otherUserId}
func (h *MessageHandler) Seen(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	otherID, ok := idParam(w, r, "otherUserId")
	if !ok {
		return
	}

	n, err := h.chats.MarkSeenWith(r.Context(), userID, otherID)
	if err != nil {
		writeServiceError(w, r, "MarkSeen", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, modifiedResponse{Message: "Messages marked as seen", ModifiedCount: n})
}

// UnreadCount handles GET /message/unread-count
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	total, err := h.chats.TotalUnreadCount(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "UnreadMessages", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"totalUnreadCount": total})
}
