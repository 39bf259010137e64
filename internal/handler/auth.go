package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/model"
)

// AccountService is what the auth endpoints need from the user service.
type AccountService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateToken(userID int64) (string, error)
	MaxAge() time.Duration
}

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	accounts     AccountService
	tokens       TokenIssuer
	media        MediaUploader
	cookieSecure bool
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(accounts AccountService, tokens TokenIssuer, media MediaUploader, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		tokens:       tokens,
		media:        media,
		cookieSecure: cookieSecure,
	}
}

// Register handles multipart sign-up: name, email, gender, password and the
// avatar in "file".
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r, model.MaxAvatarSizeBytes) {
		return
	}

	req := &model.RegisterRequest{
		Name:     formValue(r, "name"),
		Email:    formValue(r, "email"),
		Gender:   formValue(r, "gender"),
		Password: r.FormValue("password"),
	}
	if req.Name == "" || req.Email == "" || req.Gender == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "Please give all values")
		return
	}

	file, header := optionalFile(r)
	if file == nil {
		writeServiceError(w, r, "Register", model.ErrAvatarRequired)
		return
	}
	defer file.Close()

	if !requireMedia(w, h.media) {
		return
	}
	upload, err := h.media.UploadAvatar(r.Context(), file, header)
	if err != nil {
		writeServiceError(w, r, "Register.UploadAvatar", err)
		return
	}
	req.AvatarURL = &upload.URL
	req.AvatarKey = &upload.Key

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		discardUpload(r.Context(), h.media, upload.Key)
		writeServiceError(w, r, "Register", err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, "User registered", user)
}

// Login handles POST /auth/login with {email, password}.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "Email and password are required")
		return
	}

	user, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, "Login", err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, "Logged in", user)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     model.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// respondWithToken sets the session cookie and echoes the token in the body
// for clients that cannot read cookies.
func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, message string, user *model.User) {
	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		writeServiceError(w, r, "GenerateToken", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     model.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.MaxAge().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	httputil.WriteJSON(w, status, model.AuthResponse{Message: message, User: user, Token: token})
}
