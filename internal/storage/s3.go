package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/nimbusvault/nimbusvault/internal/config"
)

// ErrObjectNotFound is returned when a download is requested for an object the
// store cannot confirm exists. A transient head failure collapses into the
// same error: callers cannot tell "truly absent" from "store hiccup".
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes one stored object with its tenant prefix stripped.
type ObjectInfo struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Gateway issues capability URLs and performs object operations against a
// shared bucket. Keys passed in must come from KeyFor.
type Gateway interface {
	// PresignUpload returns a method-scoped PUT URL for the given key.
	PresignUpload(ctx context.Context, key string) (string, error)

	// PresignDownload confirms the object exists, then returns a GET URL.
	// Returns ErrObjectNotFound when existence cannot be confirmed.
	PresignDownload(ctx context.Context, key string) (string, error)

	// List returns the first page of objects under the owner's prefix,
	// prefix-stripped. Objects beyond the page limit are omitted.
	List(ctx context.Context, owner string) ([]ObjectInfo, error)

	// Delete removes the object at the given key.
	Delete(ctx context.Context, key string) error
}

// KeyFor maps an owner and filename to the object key for the shared bucket.
// Every key a user can reach starts with their own username followed by "/";
// filename must already be validated as a single path segment.
func KeyFor(owner, filename string) string {
	return owner + "/" + filename
}

// S3Gateway implements Gateway for S3-compatible storage
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2, etc.
type S3Gateway struct {
	client         *s3.Client
	presignClient  *s3.PresignClient
	bucket         string
	uploadExpiry   time.Duration
	downloadExpiry time.Duration
	listMaxKeys    int32
}

// S3Config holds configuration for the S3 gateway
type S3Config struct {
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	Endpoint       string // Optional: for S3-compatible services
	UploadExpiry   time.Duration
	DownloadExpiry time.Duration
	ListMaxKeys    int32
}

// New creates an S3-compatible gateway from app config
// For development: Use MinIO (see docker-compose.yml)
// For production: Use any S3-compatible cloud provider
func New(c *cfg.Config) (Gateway, error) {
	slog.Info("initializing S3 storage",
		"bucket", c.S3Bucket,
		"region", c.S3Region,
		"endpoint", c.S3Endpoint,
	)
	return NewS3Gateway(S3Config{
		Region:         c.S3Region,
		Bucket:         c.S3Bucket,
		AccessKey:      c.S3AccessKey,
		SecretKey:      c.S3SecretKey,
		Endpoint:       c.S3Endpoint,
		UploadExpiry:   c.S3UploadURLExpiry,
		DownloadExpiry: c.S3DownloadURLExpiry,
		ListMaxKeys:    c.S3ListMaxKeys,
	})
}

// NewS3Gateway creates a new S3 gateway instance
func NewS3Gateway(cfg S3Config) (*S3Gateway, error) {
	ctx := context.Background()

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	// Add static credentials if provided
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional custom endpoint
	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO and some S3-compatible services
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	gateway := &S3Gateway{
		client:         client,
		presignClient:  s3.NewPresignClient(client),
		bucket:         cfg.Bucket,
		uploadExpiry:   cfg.UploadExpiry,
		downloadExpiry: cfg.DownloadExpiry,
		listMaxKeys:    cfg.ListMaxKeys,
	}

	// Auto-create bucket if it doesn't exist
	if err := gateway.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return gateway, nil
}

// ensureBucket checks if bucket exists, creates it if not
func (g *S3Gateway) ensureBucket(ctx context.Context) error {
	_, err := g.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(g.bucket),
	})
	if err == nil {
		return nil // Bucket exists
	}

	_, err = g.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(g.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", g.bucket, err)
	}

	slog.Info("created S3 bucket", "bucket", g.bucket)
	return nil
}

// PresignUpload generates a presigned PUT URL scoped to the given key
func (g *S3Gateway) PresignUpload(ctx context.Context, key string) (string, error) {
	req, err := g.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = g.uploadExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign upload URL: %w", err)
	}

	return req.URL, nil
}

// PresignDownload confirms the object exists, then generates a presigned GET URL
func (g *S3Gateway) PresignDownload(ctx context.Context, key string) (string, error) {
	_, err := g.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}

	req, err := g.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = g.downloadExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign download URL: %w", err)
	}

	return req.URL, nil
}

// List returns the first page of objects under the owner's prefix.
// More than listMaxKeys objects means later ones are silently omitted.
func (g *S3Gateway) List(ctx context.Context, owner string) ([]ObjectInfo, error) {
	prefix := owner + "/"

	out, err := g.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(g.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(g.listMaxKeys),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	objects := make([]ObjectInfo, 0, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, ObjectInfo{
			Key:  strings.TrimPrefix(key, prefix),
			Size: aws.ToInt64(obj.Size),
		})
	}

	return objects, nil
}

// Delete removes the object at the given key
func (g *S3Gateway) Delete(ctx context.Context, key string) error {
	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}
