package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage is a thin wrapper around the minio client. It serves two
// consumers: the upload pipeline storing raw document content, and the
// cached object store backend mirroring its database blob.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// UploadFile uploads data from reader to the configured bucket using the provided key.
func (s *MinIOStorage) UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// DownloadFile returns a ReadCloser for the stored object.
func (s *MinIOStorage) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// perform a stat to ensure object exists
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

// Object returns a handle bound to one key in the bucket. The handle
// satisfies the record store's RemoteObject contract.
func (s *MinIOStorage) Object(key string) *MinIOObject {
	return &MinIOObject{s: s, key: key}
}

// MinIOObject is a single-object view used by the cached object backend.
type MinIOObject struct {
	s   *MinIOStorage
	key string
}

// Stat reports the object's last-modified time, or exists=false when the
// object has not been created yet.
func (o *MinIOObject) Stat(ctx context.Context) (time.Time, bool, error) {
	info, err := o.s.client.StatObject(ctx, o.s.bucket, o.key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return info.LastModified, true, nil
}

// Fetch downloads the object into the local file.
func (o *MinIOObject) Fetch(ctx context.Context, localPath string) error {
	return o.s.client.FGetObject(ctx, o.s.bucket, o.key, localPath, minio.GetObjectOptions{})
}

// Store uploads the local file as the object.
func (o *MinIOObject) Store(ctx context.Context, localPath string) error {
	_, err := o.s.client.FPutObject(ctx, o.s.bucket, o.key, localPath, minio.PutObjectOptions{ContentType: "application/json"})
	return err
}
