package handler

import (
	"context"
	"net/http"

	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/model"
)

// CommentManager is what the comment endpoints need from the comment service.
type CommentManager interface {
	Add(ctx context.Context, actorID, postID int64, text string) (*model.Comment, error)
	Remove(ctx context.Context, actorID, postID, commentID int64) error
}

type CommentHandler struct {
	comments CommentManager
}

func NewCommentHandler(comments CommentManager) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Add handles POST /post/comment/{id} with {comment}.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req model.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.comments.Add(r.Context(), actorID, postID, req.Comment)
	if err != nil {
		writeServiceError(w, r, "AddComment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Remove handles DELETE /post/comment/{id} with {commentId}.
func (h *CommentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req model.DeleteCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.comments.Remove(r.Context(), actorID, postID, req.CommentID); err != nil {
		writeServiceError(w, r, "RemoveComment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Comment deleted"})
}
