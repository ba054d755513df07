package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	maxAvatarSize    = 5 * 1024 * 1024
	presignedURLTTL  = 15 * time.Minute
	avatarPathPrefix = "avatars"
)

var (
	ErrFileTooBig          = errors.New("file size exceeds 5MB limit")
	ErrInvalidFileType     = errors.New("invalid file type, only JPEG and PNG images are allowed")
	ErrUploadFailed        = errors.New("failed to upload file")
	ErrDeleteFailed        = errors.New("failed to delete file")
	ErrURLGenerationFailed = errors.New("failed to generate presigned URL")

	allowedContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
)

// StorageService holds profile photos for coaches and clients in
// S3-compatible object storage.
type StorageService interface {
	UploadAvatar(ctx context.Context, userID uint, file io.Reader, fileSize int64, contentType string) (string, error)
	DeleteAvatar(ctx context.Context, objectKey string) error
	GenerateAvatarURL(ctx context.Context, objectKey string) (string, error)
}

type MinIOStorageService struct {
	client     *minio.Client
	bucketName string
}

func NewMinIOStorageService(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOStorageService{client: client, bucketName: bucketName}, nil
}

// EnsureBucket creates the bucket when it does not exist yet. Called once at
// startup, not per request.
func (s *MinIOStorageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func (s *MinIOStorageService) UploadAvatar(ctx context.Context, userID uint, file io.Reader, fileSize int64, contentType string) (string, error) {
	if fileSize > maxAvatarSize {
		return "", ErrFileTooBig
	}
	if _, ok := allowedContentTypes[contentType]; !ok {
		return "", ErrInvalidFileType
	}

	ext := ".jpg"
	if contentType == "image/png" {
		ext = ".png"
	}
	objectKey := fmt.Sprintf("%s/%d/%s%s", avatarPathPrefix, userID, uuid.NewString(), ext)

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, file, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return objectKey, nil
}

func (s *MinIOStorageService) DeleteAvatar(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func (s *MinIOStorageService) GenerateAvatarURL(ctx context.Context, objectKey string) (string, error) {
	presigned, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, presignedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	return presigned.String(), nil
}

// NoopStorageService is used when object storage is disabled; avatar
// endpoints report storage as unavailable.
type NoopStorageService struct{}

func NewNoopStorageService() *NoopStorageService { return &NoopStorageService{} }

var ErrStorageDisabled = errors.New("object storage is not configured")

func (s *NoopStorageService) UploadAvatar(context.Context, uint, io.Reader, int64, string) (string, error) {
	return "", ErrStorageDisabled
}

func (s *NoopStorageService) DeleteAvatar(context.Context, string) error {
	return ErrStorageDisabled
}

func (s *NoopStorageService) GenerateAvatarURL(context.Context, string) (string, error) {
	return "", ErrStorageDisabled
}
