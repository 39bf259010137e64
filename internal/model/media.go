package model

import "errors"

const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	AvatarCacheControl = "public, max-age=31536000" // 1 year

	MaxPostImageSizeBytes = 10 * 1024 * 1024
	MaxReelSizeBytes      = 100 * 1024 * 1024
	PostImageMaxWidth     = 1080
	MediaCacheControl     = "public, max-age=31536000"
)

// Supported content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"

	ContentTypeMP4       = "video/mp4"
	ContentTypeQuickTime = "video/quicktime"
	ContentTypeWebM      = "video/webm"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

var allowedVideoTypes = map[string]string{
	ContentTypeMP4:       ".mp4",
	ContentTypeQuickTime: ".mov",
	ContentTypeWebM:      ".webm",
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
	CodeInvalidVideoType = "INVALID_VIDEO_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrInvalidVideoType = errors.New("invalid video type")
)

// UploadResult represents the uploaded object location
// URL is the public-facing URL (using R2 public endpoint)
// Key is the object key inside the bucket (useful for future deletes)
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// VideoExtension returns the object extension for a supported video type.
func VideoExtension(contentType string) (string, bool) {
	ext, ok := allowedVideoTypes[contentType]
	return ext, ok
}
