package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of the S3 client used for reads.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Storage reads objects from S3-compatible object storage.
type S3Storage struct {
	client s3API
	cfg    Config
}

// New creates a new S3Storage with the given configuration.
func New(cfg Config) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3Storage{
		client: s3.New(s3.Options{}, opts...),
		cfg:    cfg,
	}, nil
}

// Get retrieves an object from S3.
// The caller is responsible for closing the returned reader.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.getObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// Read downloads an object fully and returns its content and content type.
// Objects larger than Config.MaxObjectSize fail with ErrFileTooLarge.
func (s *S3Storage) Read(ctx context.Context, key string) ([]byte, string, error) {
	out, err := s.getObject(ctx, key)
	if err != nil {
		return nil, "", err
	}
	defer out.Body.Close()

	if size := aws.ToInt64(out.ContentLength); size > s.cfg.MaxObjectSize {
		return nil, "", fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, key, size)
	}

	content, err := io.ReadAll(io.LimitReader(out.Body, s.cfg.MaxObjectSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if int64(len(content)) > s.cfg.MaxObjectSize {
		return nil, "", fmt.Errorf("%w: %s", ErrFileTooLarge, key)
	}

	return content, resolveContentType(aws.ToString(out.ContentType), key, content), nil
}

// Healthcheck verifies the bucket exists and is reachable with the configured credentials.
func (s *S3Storage) Healthcheck(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.cfg.Bucket),
	})
	if err != nil {
		return classify(err, ErrDownloadFailed)
	}
	return nil
}

func (s *S3Storage) getObject(ctx context.Context, key string) (*s3.GetObjectOutput, error) {
	objectKey, err := s.cfg.objectKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, key)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, classify(err, ErrDownloadFailed)
	}
	return out, nil
}
