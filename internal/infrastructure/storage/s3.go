package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dustin/go-humanize"

	"github.com/hszk-dev/aora/internal/domain/repository"
)

// s3API is the subset of *s3.Client used by S3Client.
type s3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3ClientConfig holds configuration for an S3-compatible object store.
type S3ClientConfig struct {
	Region    string
	Endpoint  string // Optional: custom endpoint for S3-compatible services
	AccessKey string // Optional: falls back to the default credential chain
	SecretKey string
	Bucket    string
	URLs      URLConfig
}

// S3Client implements repository.ObjectStorage on top of aws-sdk-go-v2.
// S3 cannot resize, so without a public base URL previews are served as stored.
type S3Client struct {
	api       s3API
	uploader  s3Uploader
	presigner s3Presigner
	bucket    string
	urls      URLConfig
	logger    *slog.Logger
}

// NewS3Client loads AWS configuration and verifies the bucket is reachable.
func NewS3Client(ctx context.Context, cfg S3ClientConfig, logger *slog.Logger) (*S3Client, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 storage: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if strings.TrimSpace(cfg.Endpoint) != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return newS3ClientWithAPI(ctx, client, uploader, s3.NewPresignClient(client), cfg.Bucket, cfg.URLs, logger)
}

// newS3ClientWithAPI is used for dependency injection in tests.
func newS3ClientWithAPI(ctx context.Context, api s3API, uploader s3Uploader, presigner s3Presigner, bucket string, urls URLConfig, logger *slog.Logger) (*S3Client, error) {
	if _, err := api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", repository.ErrBucketNotFound, bucket)
		}
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if urls.Expiry <= 0 {
		urls.Expiry = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &S3Client{
		api:       api,
		uploader:  uploader,
		presigner: presigner,
		bucket:    bucket,
		urls:      urls,
		logger:    logger,
	}, nil
}

// Upload stores an object in the bucket.
func (c *S3Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        manager.ReadSeekCloser(reader),
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := c.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	c.logger.Debug("object uploaded",
		slog.String("bucket", c.bucket),
		slog.String("key", key),
		slog.String("content_type", contentType),
		slog.String("size", humanize.Bytes(uint64(max(size, 0)))),
	)
	return nil
}

// ViewURL returns a URL serving the object as stored.
func (c *S3Client) ViewURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", repository.ErrObjectNotFound
	}
	if c.urls.PublicBaseURL != "" {
		return publicObjectURL(c.urls.PublicBaseURL, key, nil), nil
	}
	return c.presign(ctx, key)
}

// PreviewURL returns a sized URL when a public base (typically an image proxy) is configured.
func (c *S3Client) PreviewURL(ctx context.Context, key string, width, height int) (string, error) {
	if key == "" {
		return "", repository.ErrObjectNotFound
	}
	if c.urls.PublicBaseURL != "" {
		return publicObjectURL(c.urls.PublicBaseURL, key, previewParams(width, height)), nil
	}
	return c.presign(ctx, key)
}

func (c *S3Client) presign(ctx context.Context, key string) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.urls.Expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return req.URL, nil
}

// Delete removes an object from the bucket.
func (c *S3Client) Delete(ctx context.Context, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Exists checks if an object exists in the bucket.
func (c *S3Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// Ping verifies the bucket is still reachable.
func (c *S3Client) Ping(ctx context.Context) error {
	if _, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return fmt.Errorf("failed to ping s3: %w", err)
	}
	return nil
}

var _ repository.ObjectStorage = (*S3Client)(nil)
