package handler

import (
	"context"
	"net/http"

	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/model"
)

// PostManager is what the post endpoints need from the post service.
type PostManager interface {
	Create(ctx context.Context, ownerID int64, req model.CreatePostRequest) (*model.Post, error)
	All(ctx context.Context) (*model.AllPostsResponse, error)
	UpdateCaption(ctx context.Context, actorID, postID int64, caption string) error
	Delete(ctx context.Context, actorID, postID int64) error
	ToggleLike(ctx context.Context, actorID, postID int64) (*model.LikeResult, error)
}

type PostHandler struct {
	posts PostManager
	media MediaUploader
}

func NewPostHandler(posts PostManager, media MediaUploader) *PostHandler {
	return &PostHandler{posts: posts, media: media}
}

// Create handles POST /post/new?type=post|reel (multipart caption + file).
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	postType := r.URL.Query().Get("type")
	if postType == "" {
		postType = model.PostTypePost
	}
	if !model.IsValidPostType(postType) {
		writeServiceError(w, r, "CreatePost", model.ErrInvalidPostType)
		return
	}

	maxSize := int64(model.MaxPostImageSizeBytes)
	if postType == model.PostTypeReel {
		maxSize = model.MaxReelSizeBytes
	}
	if !parseMultipart(w, r, maxSize) {
		return
	}

	file, header := optionalFile(r)
	if file == nil {
		writeServiceError(w, r, "CreatePost", model.ErrNoMediaProvided)
		return
	}
	defer file.Close()

	if !requireMedia(w, h.media) {
		return
	}
	upload, err := h.media.UploadPostMedia(r.Context(), postType, file, header)
	if err != nil {
		writeServiceError(w, r, "CreatePost.Upload", err)
		return
	}

	post, err := h.posts.Create(r.Context(), ownerID, model.CreatePostRequest{
		Type:     postType,
		Caption:  formValue(r, "caption"),
		MediaURL: upload.URL,
		MediaKey: upload.Key,
	})
	if err != nil {
		discardUpload(r.Context(), h.media, upload.Key)
		writeServiceError(w, r, "CreatePost", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, post)
}

// All handles GET /post/all
func (h *PostHandler) All(w http.ResponseWriter, r *http.Request) {
	all, err := h.posts.All(r.Context())
	if err != nil {
		writeServiceError(w, r, "AllPosts", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, all)
}

// UpdateCaption handles PUT /post/{id} with {caption}.
func (h *PostHandler) UpdateCaption(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req model.UpdateCaptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.posts.UpdateCaption(r.Context(), actorID, postID, req.Caption); err != nil {
		writeServiceError(w, r, "UpdateCaption", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Post updated"})
}

// Delete handles DELETE /post/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), actorID, postID); err != nil {
		writeServiceError(w, r, "DeletePost", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Post deleted"})
}

// ToggleLike handles POST /post/like/{id}
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.posts.ToggleLike(r.Context(), actorID, postID)
	if err != nil {
		writeServiceError(w, r, "ToggleLike", err)
		return
	}

	msg := "Post unliked"
	if res.Liked {
		msg = "Post liked"
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: msg})
}
