package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/config"
	domain "github.com/mr0ak1/social-app/internal/model"
)

// ObjectDeleter removes stored media by key.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// objectAPI is the subset of the S3 client we use.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// MediaService handles media uploads to Cloudflare R2.
type MediaService struct {
	s3Client  objectAPI
	bucket    string
	publicURL string
}

// NewMediaService constructs an S3-compatible client for Cloudflare R2.
func NewMediaService(ctx context.Context, cfg *config.Config) (*MediaService, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return newMediaService(s3Client, cfg.R2BucketName, cfg.R2PublicURL), nil
}

func newMediaService(client objectAPI, bucket, publicURL string) *MediaService {
	return &MediaService{
		s3Client:  client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// UploadAvatar enforces size/type, normalizes to 200x200 JPEG, and uploads to R2.
func (s *MediaService) UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	data, err := readUpload(file, header, domain.MaxAvatarSizeBytes)
	if err != nil {
		return nil, err
	}
	if !domain.IsAllowedImageType(detectContentType(header, data)) {
		return nil, domain.ErrInvalidImageType
	}

	jpegBytes, err := fillToJPEG(data, domain.AvatarWidth, domain.AvatarHeight, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", domain.AvatarFolder, uuid.NewString(), domain.AvatarExt)
	return s.store(ctx, key, jpegBytes, domain.ContentTypeJPEG, domain.AvatarCacheControl)
}

// UploadPostMedia stores the file behind a post or reel. Post images are
// scaled down to PostImageMaxWidth and re-encoded as JPEG; reels must be a
// supported video and are stored as-is.
func (s *MediaService) UploadPostMedia(ctx context.Context, postType string, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	if postType == domain.PostTypeReel {
		data, err := readUpload(file, header, domain.MaxReelSizeBytes)
		if err != nil {
			return nil, err
		}
		contentType := detectContentType(header, data)
		ext, ok := domain.VideoExtension(contentType)
		if !ok {
			return nil, domain.ErrInvalidVideoType
		}
		key := fmt.Sprintf("%s/%s%s", domain.ReelMediaFolder, uuid.NewString(), ext)
		return s.store(ctx, key, data, contentType, domain.MediaCacheControl)
	}

	data, err := readUpload(file, header, domain.MaxPostImageSizeBytes)
	if err != nil {
		return nil, err
	}
	if !domain.IsAllowedImageType(detectContentType(header, data)) {
		return nil, domain.ErrInvalidImageType
	}

	jpegBytes, err := fitWidthToJPEG(data, domain.PostImageMaxWidth, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s.jpg", domain.PostMediaFolder, uuid.NewString())
	return s.store(ctx, key, jpegBytes, domain.ContentTypeJPEG, domain.MediaCacheControl)
}

// readUpload loads the upload into memory, refusing anything above maxSize.
func readUpload(file multipart.File, header *multipart.FileHeader, maxSize int64) ([]byte, error) {
	if header.Size > maxSize {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}

// detectContentType prefers the part header and sniffs otherwise.
func detectContentType(header *multipart.FileHeader, data []byte) string {
	contentType := header.Header.Get("Content-Type")
	if (contentType == "" || contentType == "application/octet-stream") && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	return contentType
}

// fillToJPEG centers/crops to target size and encodes as JPEG.
func fillToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return encodeJPEG(imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos), quality)
}

// fitWidthToJPEG shrinks images wider than maxWidth, keeping the aspect ratio.
func fitWidthToJPEG(data []byte, maxWidth, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	return encodeJPEG(img, quality)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// store uploads bytes to R2 and returns the public location.
func (s *MediaService) store(ctx context.Context, key string, body []byte, contentType, cacheControl string) (*domain.UploadResult, error) {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to r2: %w", err)
	}

	logrus.WithFields(logrus.Fields{"key": key, "bytes": len(body)}).Debug("[MediaService] Upload OK")
	return &domain.UploadResult{URL: fmt.Sprintf("%s/%s", s.publicURL, key), Key: key}, nil
}

// DeleteObject removes an object by key. Callers should ensure the key is not the shared default.
func (s *MediaService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from r2: %w", err)
	}
	return nil
}
