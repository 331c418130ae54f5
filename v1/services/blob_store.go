package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vinothroacs/kalyanmalai-backend/pkg/monitoring"
)

// ErrBlobStoreDisabled is returned when no bucket is configured
var ErrBlobStoreDisabled = errors.New("blob store is not configured")

const defaultPresignExpiry = 5 * time.Minute

// BlobStore hands out presigned URLs for profile documents
type BlobStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error)
	PresignRead(ctx context.Context, key string) (string, error)
}

// S3BlobStore presigns PUT and GET requests against one bucket
type S3BlobStore struct {
	presigner *s3.PresignClient
	bucket    string
	expiry    time.Duration
	now       Clock
}

// NewS3BlobStore loads the default AWS configuration for region and creates a presigner
func NewS3BlobStore(ctx context.Context, region, bucket string) (*S3BlobStore, error) {
	if bucket == "" {
		return nil, ErrBlobStoreDisabled
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3BlobStore{
		presigner: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		bucket:    bucket,
		expiry:    defaultPresignExpiry,
		now:       SystemClock,
	}, nil
}

// PresignUpload returns a URL the client can PUT the file to
func (s *S3BlobStore) PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error) {
	start := time.Now()
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.expiry))
	monitoring.RecordExternalCall(ctx, "s3", "presign_put", time.Since(start), err)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, s.now().Add(s.expiry), nil
}

// PresignRead returns a short-lived download URL
func (s *S3BlobStore) PresignRead(ctx context.Context, key string) (string, error) {
	start := time.Now()
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	monitoring.RecordExternalCall(ctx, "s3", "presign_get", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to presign read: %w", err)
	}
	return req.URL, nil
}

// DisabledBlobStore rejects every request
type DisabledBlobStore struct{}

// PresignUpload implements BlobStore
func (DisabledBlobStore) PresignUpload(context.Context, string, string) (string, time.Time, error) {
	return "", time.Time{}, ErrBlobStoreDisabled
}

// PresignRead implements BlobStore
func (DisabledBlobStore) PresignRead(context.Context, string) (string, error) {
	return "", ErrBlobStoreDisabled
}

// BuildBlobKey places an upload under <kind>/<memberID>/<unix>-<name>
func BuildBlobKey(kind, memberID, fileName string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return fmt.Sprintf("%s/%s/%d-%s", kind, memberID, now.Unix(), name)
}
