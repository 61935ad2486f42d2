package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pageza/recipe-share/backend/config"
)

const s3KeyPrefix = "recipes/"

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images in an S3 bucket and references them by public URL.
type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
}

func NewS3Store(cfg *config.S3Config) *S3Store {
	return newS3Store(cfg.Client, cfg.BucketName, cfg.BaseURL)
}

func newS3Store(client s3API, bucket, baseURL string) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *S3Store) Save(ctx context.Context, filename string, r io.Reader, contentType string) (string, error) {
	key := s3KeyPrefix + filename
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind ref. S3 reports success for missing keys.
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	if !strings.HasPrefix(ref, s.baseURL+"/") {
		return nil
	}
	key := strings.TrimPrefix(ref, s.baseURL+"/")
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
