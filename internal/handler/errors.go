package handler

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/model"
)

var badRequestErrors = []error{
	model.ErrNameRequired,
	model.ErrEmailRequired,
	model.ErrPasswordRequired,
	model.ErrInvalidGender,
	model.ErrAvatarRequired,
	model.ErrWrongPassword,
	model.ErrInvalidCredentials,
	model.ErrInvalidPostType,
	model.ErrNoMediaProvided,
	model.ErrCaptionTooLong,
	model.ErrCommentRequired,
	model.ErrCommentTooLong,
	model.ErrCommentIDRequired,
	model.ErrMessageRequired,
	model.ErrMessageTooLong,
	model.ErrCannotMessageSelf,
	model.ErrDeviceTokenRequired,
	model.ErrInvalidPlatform,
}

var notFoundErrors = []error{
	model.ErrUserNotFound,
	model.ErrPostNotFound,
	model.ErrCommentNotFound,
	model.ErrChatNotFound,
	model.ErrNotificationNotFound,
}

var forbiddenErrors = []error{
	model.ErrNotAccountOwner,
	model.ErrNotPostOwner,
	model.ErrNotAllowedToDelete,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeServiceError maps a domain error to its HTTP response. Unknown errors
// are logged with op and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, model.ErrCannotFollowSelf):
		httputil.WriteForbidden(w, "You can't follow yourself")
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File exceeds the size limit")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
	case errors.Is(err, model.ErrInvalidVideoType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidVideoType, "Unsupported video type. Allowed: mp4, mov, webm")
	case errors.Is(err, model.ErrEmailExists):
		httputil.WriteConflict(w, "User already exists")
	case isAny(err, badRequestErrors):
		httputil.WriteBadRequest(w, err.Error())
	case isAny(err, notFoundErrors):
		httputil.WriteNotFound(w, err.Error())
	case isAny(err, forbiddenErrors):
		httputil.WriteForbidden(w, err.Error())
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"op":     op,
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("[Handler] Unexpected error")
		httputil.WriteInternalError(w, "Something went wrong")
	}
}
