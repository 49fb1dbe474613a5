package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"storefront-media/internal/config"
	"storefront-media/internal/repository/artifact"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// FileRepository keeps artifacts as flat objects in one bucket.
type FileRepository struct {
	client  *minio.Client
	bucket  string
	retries retry.Strategy
	logger  *zlog.Zerolog
	ready   atomic.Bool
}

func NewMinIORepository(cfg *config.Config, retries retry.Strategy, logger *zlog.Zerolog) (*FileRepository, error) {
	mc := cfg.Storage.MinIO

	client, err := minio.New(mc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mc.AccessKey, mc.SecretKey, ""),
		Secure: mc.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	repo := &FileRepository{
		client:  client,
		bucket:  mc.Bucket,
		retries: retries,
		logger:  logger,
	}

	err = retry.Do(func() error {
		return repo.Ensure(context.Background())
	}, retries)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare bucket %s: %w", mc.Bucket, err)
	}

	return repo, nil
}

// Ensure creates the bucket when missing. Once the bucket is known to exist
// further calls return immediately.
func (r *FileRepository) Ensure(ctx context.Context) error {
	if r.ready.Load() {
		return nil
	}

	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("%w: failed to check bucket: %w", artifact.ErrStorageError, err)
	}
	if !exists {
		err := r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{})
		if err != nil {
			if resp := minio.ToErrorResponse(err); resp.Code != "BucketAlreadyOwnedByYou" && resp.Code != "BucketAlreadyExists" {
				return fmt.Errorf("%w: failed to create bucket: %w", artifact.ErrStorageError, err)
			}
		} else {
			r.logger.Info().Str("bucket", r.bucket).Msg("Created bucket")
		}
	}

	r.ready.Store(true)
	return nil
}

func (r *FileRepository) Save(ctx context.Context, filename string, data []byte, contentType string) error {
	if err := artifact.ValidateFilename(filename); err != nil {
		return err
	}

	_, err := r.client.PutObject(ctx, r.bucket, filename, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to put object %s: %w", artifact.ErrStorageError, filename, err)
	}
	return nil
}

func (r *FileRepository) Get(ctx context.Context, filename string) (io.ReadSeekCloser, error) {
	if err := artifact.ValidateFilename(filename); err != nil {
		return nil, err
	}

	if _, err := r.client.StatObject(ctx, r.bucket, filename, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, artifact.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("%w: failed to stat object %s: %w", artifact.ErrStorageError, filename, err)
	}

	obj, err := r.client.GetObject(ctx, r.bucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get object %s: %w", artifact.ErrStorageError, filename, err)
	}
	return obj, nil
}

func (r *FileRepository) Exists(ctx context.Context, filename string) (bool, error) {
	if err := artifact.ValidateFilename(filename); err != nil {
		return false, err
	}

	_, err := r.client.StatObject(ctx, r.bucket, filename, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to stat object %s: %w", artifact.ErrStorageError, filename, err)
	}
	return true, nil
}

// Delete stats first because S3 removal of a missing key succeeds silently.
func (r *FileRepository) Delete(ctx context.Context, filename string) error {
	exists, err := r.Exists(ctx, filename)
	if err != nil {
		return err
	}
	if !exists {
		return artifact.ErrArtifactNotFound
	}

	if err := r.client.RemoveObject(ctx, r.bucket, filename, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: failed to remove object %s: %w", artifact.ErrStorageError, filename, err)
	}
	return nil
}
