package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/caffeinepub/saree-catalogue-portal/internal/storage"
)

// Config selects the bucket and how objects are addressed.
type Config struct {
	Bucket string
	Region string
	// Endpoint overrides the AWS endpoint, e.g. for MinIO. Path-style
	// addressing is used when set.
	Endpoint string
	// PublicBaseURL prefixes object keys in returned URLs, typically a CDN.
	// Defaults to the virtual-hosted bucket URL.
	PublicBaseURL string
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Storage implements storage.Storage on Amazon S3.
type Storage struct {
	api     objectAPI
	bucket  string
	baseURL string
}

// New loads AWS credentials from the default chain and builds an S3 store.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newStorage(client, cfg), nil
}

func newStorage(api objectAPI, cfg Config) *Storage {
	base := cfg.PublicBaseURL
	switch {
	case base != "":
	case cfg.Endpoint != "":
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &Storage{api: api, bucket: cfg.Bucket, baseURL: strings.TrimRight(base, "/")}
}

// Upload puts the object and returns its public URL.
func (s *Storage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	put := &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(input.Key),
		Body:         input.Data,
		ContentType:  aws.String(input.ContentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}
	if input.Size > 0 {
		put.ContentLength = aws.Int64(input.Size)
	}

	if _, err := s.api.PutObject(ctx, put); err != nil {
		return nil, fmt.Errorf("put s3://%s/%s: %w", s.bucket, input.Key, err)
	}
	return &storage.UploadResult{Key: input.Key, URL: s.baseURL + "/" + input.Key}, nil
}

// Delete removes the object at key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
