// internal/common/aws/s3.go
package aws

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Client stores raw file content under bucket/prefix.
type S3Client struct {
	client S3API
	bucket string
	prefix string
}

func NewS3Client(ctx context.Context, region, bucket, prefix string) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &S3Client{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

func NewS3ClientFrom(api S3API, bucket, prefix string) *S3Client {
	return &S3Client{client: api, bucket: bucket, prefix: prefix}
}

// Put writes content at prefix/folder/name and returns its s3:// reference.
func (c *S3Client) Put(ctx context.Context, folder, name, contentType string, content []byte, metadata map[string]string) (string, error) {
	key := path.Join(c.prefix, folder, name)
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", c.bucket, key), nil
}
