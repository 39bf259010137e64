package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/model"
)

// MediaUploader stores uploaded files in object storage.
type MediaUploader interface {
	UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
	UploadPostMedia(ctx context.Context, postType string, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
	DeleteObject(ctx context.Context, key string) error
}

// formFileField is the multipart field every upload uses.
const formFileField = "file"

// parseMultipart bounds the body to maxFile plus form overhead and parses it.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxFile int64) bool {
	maxFormSize := maxFile + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrNotMultipart):
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
		case errors.As(err, &tooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File exceeds the size limit")
		default:
			httputil.WriteBadRequest(w, "Invalid form data")
		}
		return false
	}
	return true
}

// optionalFile returns the uploaded file, or nil when the field is absent.
func optionalFile(r *http.Request) (multipart.File, *multipart.FileHeader) {
	file, header, err := r.FormFile(formFileField)
	if err != nil {
		return nil, nil
	}
	return file, header
}

// requireMedia writes 503 when object storage is not configured.
func requireMedia(w http.ResponseWriter, media MediaUploader) bool {
	if media == nil {
		httputil.WriteUnavailable(w, "Media storage is not configured")
		return false
	}
	return true
}

// discardUpload removes an object whose owning record was never written.
func discardUpload(ctx context.Context, media MediaUploader, key string) {
	if err := media.DeleteObject(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("[Handler] Failed to discard upload")
	}
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
