package gcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/edupilot/edupilot-backend/internal/logger"
)

type BucketCategory string

const (
	BucketCategoryAvatar        BucketCategory = "avatar"
	BucketCategoryDocumentation BucketCategory = "documentation"
)

type bucketConfig struct {
	name      string
	cdnDomain string
}

type BucketService interface {
	UploadFile(ctx context.Context, category BucketCategory, key string, contentType string, file io.Reader) error
	DeleteFile(ctx context.Context, category BucketCategory, key string) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	GetPublicURL(category BucketCategory, key string) string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	avatarBucket  bucketConfig
	docBucket     bucketConfig
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")

	avatarBucketName := os.Getenv("AVATAR_GCS_BUCKET_NAME")
	docBucketName := os.Getenv("DOCUMENTATION_GCS_BUCKET_NAME")
	if avatarBucketName == "" {
		return nil, fmt.Errorf("missing env var AVATAR_GCS_BUCKET_NAME")
	}
	if docBucketName == "" {
		return nil, fmt.Errorf("missing env var DOCUMENTATION_GCS_BUCKET_NAME")
	}

	avatarCDN := os.Getenv("AVATAR_CDN_DOMAIN")
	docCDN := os.Getenv("DOCUMENTATION_CDN_DOMAIN")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	stClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		avatarBucket: bucketConfig{
			name:      avatarBucketName,
			cdnDomain: avatarCDN,
		},
		docBucket: bucketConfig{
			name:      docBucketName,
			cdnDomain: docCDN,
		},
	}, nil
}

func (bs *bucketService) getBucketConfig(category BucketCategory) (bucketConfig, error) {
	switch category {
	case BucketCategoryAvatar:
		return bs.avatarBucket, nil
	case BucketCategoryDocumentation:
		return bs.docBucket, nil
	default:
		return bucketConfig{}, fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) UploadFile(ctx context.Context, category BucketCategory, key string, contentType string, file io.Reader) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	uploadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(cfg.name).Object(key).NewWriter(uploadCtx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, category BucketCategory, key string) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	deleteCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := bs.storageClient.Bucket(cfg.name).Object(key).Delete(deleteCtx); err != nil {
		return fmt.Errorf("failed to delete GCS object: %w", err)
	}
	return nil
}

func (bs *bucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return nil, err
	}

	r, err := bs.storageClient.Bucket(cfg.name).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	return r, nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return ""
	}
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimSuffix(cfg.cdnDomain, "/"), key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}
