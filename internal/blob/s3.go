package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// uploadCacheControl marks uploads immutable; names are random per upload.
const uploadCacheControl = "public, max-age=31536000, immutable"

// S3API is the subset of the S3 client used by the blob store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores uploads in an S3-compatible bucket.
type S3 struct {
	client    S3API
	bucket    string
	publicURL string
}

var _ Store = (*S3)(nil)

// NewS3 creates an S3 store. Object URLs are publicURL + "/" + name.
func NewS3(client S3API, bucket, publicURL string) *S3 {
	return &S3{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Put implements Store.
func (s *S3) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}

	// PutObject signs the payload, so the body must be seekable.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(name),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(uploadCacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	return s.publicURL + "/" + name, nil
}
