package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds the configuration for the S3-compatible image store.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3 stores images in an S3-compatible bucket (MinIO or AWS).
type S3 struct {
	client *minio.Client
	bucket string
}

// NewS3 creates a new S3-backed image store.
func NewS3(cfg *S3Config) (*S3, error) {
	// minio-go expects host:port without a protocol prefix
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &S3{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *S3) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	return nil
}

func (s *S3) Save(ctx context.Context, r io.Reader, ext string) (string, error) {
	name, err := NewFilename(ext)
	if err != nil {
		return "", err
	}

	opts := minio.PutObjectOptions{
		ContentType: ContentType(ext),
	}

	// Size -1 streams with multipart; uploads are small so this is fine.
	if _, err := s.client.PutObject(ctx, s.bucket, name, r, -1, opts); err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", name, err)
	}

	return name, nil
}

func (s *S3) Remove(ctx context.Context, name string) error {
	// RemoveObject succeeds on absent keys, so stat first to surface
	// ErrNotFound the way the local backend does.
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrNotFound
		}
		return fmt.Errorf("failed to stat object %s: %w", name, err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", name, err)
	}
	return nil
}

func (s *S3) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence %s: %w", name, err)
	}
	return true, nil
}

// Ping checks if the storage is accessible by verifying the bucket exists.
func (s *S3) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}
