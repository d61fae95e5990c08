package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client streams objects from S3.
type S3Client struct {
	s3Client *s3.Client
}

// NewS3Client creates an S3 client using the default AWS configuration chain.
func NewS3Client(ctx context.Context) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &S3Client{
		s3Client: s3.NewFromConfig(cfg),
	}, nil
}

// NewS3ClientWithConfig creates an S3 client with a custom AWS config.
func NewS3ClientWithConfig(cfg aws.Config) *S3Client {
	return &S3Client{
		s3Client: s3.NewFromConfig(cfg),
	}
}

// StreamObject returns a reader for an S3 object.
func (c *S3Client) StreamObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	resp, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object s3://%s/%s: %w", bucket, key, err)
	}
	return resp.Body, nil
}

// IsS3URI reports whether uri names an S3 object.
func IsS3URI(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}

// ParseS3URI splits an s3://bucket/key URI.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsS3URI(uri) {
		return "", "", errors.New("invalid S3 URI: must start with s3://")
	}

	path := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		return "", "", errors.New("invalid S3 URI: missing bucket name")
	}

	bucket = parts[0]
	if len(parts) == 2 {
		key = parts[1]
	}
	if key == "" {
		return "", "", errors.New("invalid S3 URI: missing object key")
	}

	return bucket, key, nil
}
