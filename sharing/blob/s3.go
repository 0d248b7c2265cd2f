package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// S3 stores documents as objects of one bucket. A PutObject replaces the
// object atomically.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	backend := blob.NewS3(s3.NewFromConfig(cfg), "my-bucket")
type S3 struct {
	client S3API
	bucket string
}

func NewS3(client S3API, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

func objectKey(path string) string {
	return strings.TrimPrefix(path, "/")
}

func (s *S3) Load(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(path)),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, objectKey(path))
		}
		return nil, fmt.Errorf("blob: s3 get %s: %w", path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("blob: s3 read %s: %w", path, err)
	}
	return data, nil
}

func (s *S3) Save(ctx context.Context, path string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(path)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("blob: s3 put %s: %w", path, err)
	}
	return nil
}
