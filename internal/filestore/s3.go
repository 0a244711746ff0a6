package filestore

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 persists images in an S3-compatible bucket.
type S3 struct {
	client    *minio.Client
	bucket    string
	urlPrefix string
}

var _ FileStore = (*S3)(nil)

type S3Params struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	URLPrefix string
}

func NewS3(params S3Params) (*S3, error) {
	client, err := minio.New(params.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(params.AccessKey, params.SecretKey, ""),
		Secure: params.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}

	urlPrefix := params.URLPrefix
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}

	return &S3{
		client:    client,
		bucket:    params.Bucket,
		urlPrefix: urlPrefix,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *S3) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket: %w", err)
	}
	return nil
}

func (s *S3) WriteRecipeImage(ctx context.Context, suffix string, data []byte) (string, error) {
	return s.write(ctx, recipeImageName(suffix), data)
}

func (s *S3) WriteAvatarImage(ctx context.Context, suffix string, data []byte) (string, error) {
	return s.write(ctx, avatarImageName(suffix), data)
}

func (s *S3) write(ctx context.Context, name string, data []byte) (string, error) {
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, name,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("putting object: %w", err)
	}

	return nameToURLPath(name, s.urlPrefix), nil
}

func (s *S3) DeleteURLPath(ctx context.Context, urlPath string) error {
	name := urlPathToName(urlPath, s.urlPrefix)
	if name == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing object: %w", err)
	}
	return nil
}
