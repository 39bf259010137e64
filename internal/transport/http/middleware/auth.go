package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
)

// TokenParser verifies a session token and returns its user id.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// AuthMiddleware requires a valid token.
// Checks the Authorization header first (mobile), then the cookie (web).
// Parse errors matching expired get the TOKEN_EXPIRED code.
func AuthMiddleware(tokens TokenParser, expired error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				httputil.WriteForbidden(w, "Please login")
				return
			}

			userID, err := tokens.ParseToken(tokenString)
			if err != nil {
				if expired != nil && errors.Is(err, expired) {
					httputil.WriteError(w, http.StatusForbidden, model.CodeTokenExpired, "Token expired, please login again")
					return
				}
				httputil.WriteError(w, http.StatusForbidden, model.CodeTokenInvalid, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if tok := strings.TrimSpace(parts[1]); tok != "" {
				return tok
			}
		}
	}

	cookie, err := r.Cookie(model.TokenCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or 0 and false if not found
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// WithUserID returns ctx carrying userID, as AuthMiddleware would set it.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
