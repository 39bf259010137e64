package handler

import (
	"context"
	"net/http"

	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/model"
)

// ProfileService is what the user endpoints need from the user service.
type ProfileService interface {
	GetProfile(ctx context.Context, userID int64) (*model.User, error)
	Search(ctx context.Context, query string, viewerID int64) ([]model.UserSummary, error)
	FollowData(ctx context.Context, userID int64) (*model.FollowData, error)
	UpdateProfile(ctx context.Context, actorID, userID int64, req model.UpdateProfileRequest) (*model.User, error)
	UpdatePassword(ctx context.Context, actorID, userID int64, req model.UpdatePasswordRequest) error
}

// FollowToggler flips a follow relationship.
type FollowToggler interface {
	Toggle(ctx context.Context, actorID, targetID int64) (*model.FollowResult, error)
}

type UserHandler struct {
	users   ProfileService
	follows FollowToggler
	media   MediaUploader
}

func NewUserHandler(users ProfileService, follows FollowToggler, media MediaUploader) *UserHandler {
	return &UserHandler{
		users:   users,
		follows: follows,
		media:   media,
	}
}

// Me handles GET /user/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "Me", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// Profile handles GET /user/{id}
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "Profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// Search handles GET /user/search?query=
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	users, err := h.users.Search(r.Context(), r.URL.Query().Get("query"), viewerID)
	if err != nil {
		writeServiceError(w, r, "Search", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

// FollowData handles GET /user/followdata/{id}
func (h *UserHandler) FollowData(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	data, err := h.users.FollowData(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "FollowData", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

// ToggleFollow handles POST /user/follow/{id}
func (h *UserHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	targetID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.follows.Toggle(r.Context(), actorID, targetID)
	if err != nil {
		writeServiceError(w, r, "ToggleFollow", err)
		return
	}

	msg := "User unfollowed"
	if res.Following {
		msg = "User followed"
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// UpdatePassword handles POST /user/{id} with {oldPassword, newPassword}.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	userID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.users.UpdatePassword(r.Context(), actorID, userID, req); err != nil {
		writeServiceError(w, r, "UpdatePassword", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Password updated"})
}

// UpdateProfile handles PUT /user/{id} (multipart): optional name and an
// optional new avatar in "file".
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	userID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if actorID != userID {
		writeServiceError(w, r, "UpdateProfile", model.ErrNotAccountOwner)
		return
	}
	if !parseMultipart(w, r, model.MaxAvatarSizeBytes) {
		return
	}

	var req model.UpdateProfileRequest
	if name := formValue(r, "name"); name != "" {
		req.Name = &name
	}

	var uploadedKey string
	if file, header := optionalFile(r); file != nil {
		defer file.Close()
		if !requireMedia(w, h.media) {
			return
		}
		upload, err := h.media.UploadAvatar(r.Context(), file, header)
		if err != nil {
			writeServiceError(w, r, "UpdateProfile.UploadAvatar", err)
			return
		}
		req.AvatarURL = &upload.URL
		req.AvatarKey = &upload.Key
		uploadedKey = upload.Key
	}

	user, err := h.users.UpdateProfile(r.Context(), actorID, userID, req)
	if err != nil {
		if uploadedKey != "" {
			discardUpload(r.Context(), h.media, uploadedKey)
		}
		writeServiceError(w, r, "UpdateProfile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}
