package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/transport/http/middleware"
)

const maxJSONBody = 1 << 20

// messageResponse is the {"message": ...} body most mutations return.
type messageResponse struct {
	Message string `json:"message"`
}

// currentUser returns the authenticated user id or writes 403.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteForbidden(w, "Please login")
		return 0, false
	}
	return userID, true
}

// idParam parses a positive int64 route parameter or writes 400.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteBadRequest(w, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// decodeJSON reads a bounded JSON body into v or writes 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// queryInt returns the integer query parameter, or def when absent or invalid.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}
