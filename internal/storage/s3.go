// internal/storage/s3.go

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Store uploads blobs to a single S3 bucket, one key prefix per logical
// bucket.
type S3Store struct {
	client     *s3.S3
	bucketName string
}

// NewS3Store creates an S3-backed blob store.
func NewS3Store(bucketName, region string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		client:     s3.New(sess),
		bucketName: bucketName,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error) {
	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, body); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	objectKey := fmt.Sprintf("%s/%s", bucket, key)

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucketName),
		Key:                aws.String(objectKey),
		Body:               bytes.NewReader(buffer.Bytes()),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String("inline"),
		ACL:                aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucketName, objectKey), nil
}

func (s *S3Store) Delete(ctx context.Context, publicURL string) error {
	prefix := fmt.Sprintf("https://%s.s3.amazonaws.com/", s.bucketName)
	if !strings.HasPrefix(publicURL, prefix) {
		return fmt.Errorf("url %q was not issued by bucket %s", publicURL, s.bucketName)
	}
	objectKey := strings.TrimPrefix(publicURL, prefix)

	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	return err
}
