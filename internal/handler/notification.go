package handler

import (
	"context"
	"net/http"

	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/model"
)

// Inbox is what the notification endpoints need from the notification service.
type Inbox interface {
	List(ctx context.Context, recipientID int64, page, limit int) (*model.NotificationPage, error)
	UnreadCount(ctx context.Context, recipientID int64) (int, error)
	MarkRead(ctx context.Context, id, recipientID int64) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID int64) (int64, error)
	Delete(ctx context.Context, id, recipientID int64) error
	RegisterDeviceToken(ctx context.Context, userID int64, token, platform string) error
	RemoveDeviceToken(ctx context.Context, userID int64, token string) error
}

type NotificationHandler struct {
	inbox Inbox
}

func NewNotificationHandler(inbox Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// List handles GET /notifications?page=&limit=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", model.DefaultNotificationPage)
	limit := queryInt(r, "limit", model.DefaultNotificationLimit)

	result, err := h.inbox.List(r.Context(), userID, page, limit)
	if err != nil {
		writeServiceError(w, r, "ListNotifications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	count, err := h.inbox.UnreadCount(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "UnreadNotifications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"unreadCount": count})
}

// MarkRead handles PUT /notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	n, err := h.inbox.MarkRead(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, r, "MarkRead", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

// MarkAllRead handles PUT /notifications/mark-all-read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	n, err := h.inbox.MarkAllRead(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "MarkAllRead", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, modifiedResponse{Message: "All notifications marked as read", ModifiedCount: n})
}

// Delete handles DELETE /notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.inbox.Delete(r.Context(), id, userID); err != nil {
		writeServiceError(w, r, "DeleteNotification", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Notification deleted"})
}

// RegisterToken handles POST /devices/token
func (h *NotificationHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req model.RegisterTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.inbox.RegisterDeviceToken(r.Context(), userID, req.Token, req.Platform); err != nil {
		writeServiceError(w, r, "RegisterToken", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Device token registered"})
}

// RemoveToken handles DELETE /devices/token
func (h *NotificationHandler) RemoveToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req model.RegisterTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.inbox.RemoveDeviceToken(r.Context(), userID, req.Token); err != nil {
		writeServiceError(w, r, "RemoveToken", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Device token removed"})
}
