package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Belkadi-Amine23/mystore/internal/metrics"
	"github.com/Belkadi-Amine23/mystore/pkg/config"
	"github.com/Belkadi-Amine23/mystore/pkg/mylogger"
	"github.com/Belkadi-Amine23/mystore/pkg/utils"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ImageStore keeps product images in an object bucket and hands back public
// URLs for the catalog.
type ImageStore interface {
	Upload(ctx context.Context, filename, contentType string, size int64, reader io.Reader) (string, error)
	Remove(ctx context.Context, imageURL string) error
}

type minioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

func NewImageStore(ctx context.Context, cfg config.Minio, logger *zap.Logger) (ImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "minio",
		MaxRequests: 3,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &minioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		breaker:   breaker,
		logger:    logger,
	}, nil
}

func (s *minioStore) Upload(ctx context.Context, filename, contentType string, size int64, reader io.Reader) (string, error) {
	objectName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filename)

	_, err := utils.ExecuteWithBreaker(s.breaker, func() (minio.UploadInfo, error) {
		return s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
			ContentType: contentType,
		})
	})
	if err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()

		mylogger.Error(
			ctx,
			s.logger,
			"Failed to upload image",
			zap.String("object", objectName),
			zap.Error(err),
		)

		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	metrics.ImageUploads.WithLabelValues("ok").Inc()

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), nil
}

// Remove deletes the object behind a previously issued public URL. URLs from
// other hosts are ignored.
func (s *minioStore) Remove(ctx context.Context, imageURL string) error {
	prefix := fmt.Sprintf("%s/%s/", s.publicURL, s.bucket)
	if !strings.HasPrefix(imageURL, prefix) {
		return nil
	}

	objectName := strings.TrimPrefix(imageURL, prefix)

	_, err := utils.ExecuteWithBreaker(s.breaker, func() (struct{}, error) {
		return struct{}{}, s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	})
	if err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Failed to remove image",
			zap.String("object", objectName),
			zap.Error(err),
		)

		return fmt.Errorf("failed to remove image: %w", err)
	}

	return nil
}
