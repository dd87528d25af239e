package storage

import (
	"GoDrop/config"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage keeps uploaded bytes in a MinIO bucket behind the same
// Storage contract as the local backend.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage connects to MinIO and ensures the bucket exists.
func NewMinioStorage(cfg config.StorageConfig) (*MinioStorage, error) {
	endpoint := fmt.Sprintf("%s:%s", cfg.MinioHost, cfg.MinioPort)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioUsername, cfg.MinioPassword, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket: %w", err)
		}
	}
	return &MinioStorage{client: client, bucket: cfg.BucketName}, nil
}

// cappedReader fails the upload the moment the stream exceeds the limit.
type cappedReader struct {
	src  io.Reader
	left int64
}

func (r *cappedReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		r.left -= int64(n)
		if r.left < 0 {
			return n, ErrFileTooLarge
		}
	}
	return n, err
}

// Save streams source into the bucket under a generated object name.
func (s *MinioStorage) Save(ctx context.Context, source io.Reader, originalName string, maxBytes int64) (StoredFile, error) {
	storedName := uuid.NewString() + filepath.Ext(originalName)

	capped := &cappedReader{src: source, left: maxBytes}
	info, err := s.client.PutObject(ctx, s.bucket, storedName, capped, -1, minio.PutObjectOptions{})
	if err != nil {
		_ = s.client.RemoveObject(context.Background(), s.bucket, storedName, minio.RemoveObjectOptions{})
		if capped.left < 0 {
			return StoredFile{}, ErrFileTooLarge
		}
		return StoredFile{}, err
	}

	return StoredFile{
		StoredName:   storedName,
		RelativePath: storedName,
		SizeBytes:    info.Size,
	}, nil
}

// Delete removes the object, failing with ErrNotFound when absent.
func (s *MinioStorage) Delete(ctx context.Context, relativePath string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, relativePath, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrNotFound
		}
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, relativePath, minio.RemoveObjectOptions{})
}

// Open returns a reader over the object and its size.
func (s *MinioStorage) Open(ctx context.Context, relativePath string) (io.ReadCloser, int64, error) {
	stat, err := s.client.StatObject(ctx, s.bucket, relativePath, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, relativePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, err
	}
	return obj, stat.Size, nil
}

// ResolvePath returns the bucket-qualified object locator.
func (s *MinioStorage) ResolvePath(relativePath string) string {
	return s.bucket + "/" + relativePath
}
