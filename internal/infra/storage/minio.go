package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store archives analyzed attachments in a MinIO/S3 bucket.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// Ping reports whether the archive bucket is reachable and still exists.
func (s *Store) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

// PutAttachment uploads data under key (an extension is added from the
// content type) and returns the object URL.
func (s *Store) PutAttachment(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key = withExtension(key, contentType)

	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	return objectURL(s.client.EndpointURL().Scheme, s.client.EndpointURL().Host, s.bucketName, key), nil
}

func withExtension(key, contentType string) string {
	if path.Ext(key) != "" {
		return key
	}
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return key
	}
	return key + exts[0]
}

func objectURL(scheme, host, bucket, key string) string {
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, host, bucket, key)
}
