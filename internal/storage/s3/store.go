// Package s3 keeps case documents in one Amazon S3 (or S3-compatible)
// bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"notaria/internal/config"
	"notaria/internal/domain"
	"notaria/internal/port"
)

// Store is a port.FileStore bound to a single bucket.
type Store struct {
	bucket   string
	api      *s3.Client
	signer   *s3.PresignClient
	uploader *manager.Uploader
	// readLimit caps Get; zero disables the cap.
	readLimit int64
}

var _ port.FileStore = (*Store)(nil)

// NewStore builds a Store from configuration. A custom endpoint switches to
// path-style addressing, which MinIO and localstack require.
func NewStore(ctx context.Context, cfg *config.S3Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		static := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(static))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return &Store{
		bucket:    cfg.Bucket,
		api:       api,
		signer:    s3.NewPresignClient(api),
		uploader:  manager.NewUploader(api),
		readLimit: cfg.MaxFileSizeMB << 20,
	}, nil
}

func (s *Store) object(key string) *s3.GetObjectInput {
	return &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}
}

// Put streams body to key. The uploader switches to multipart for large
// scans on its own.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*port.StoredFile, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	res, err := s.uploader.Upload(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("s3 put %s/%s: %w", s.bucket, key, err)
	}
	return &port.StoredFile{Key: key, Location: res.Location}, nil
}

// Get reads an object into memory for image analysis. A missing key maps to
// a domain not-found error; objects past the upload limit are refused.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := s.api.GetObject(ctx, s.object(key))
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, domain.NewNotFound("object", key)
		}
		return nil, fmt.Errorf("s3 get %s/%s: %w", s.bucket, key, err)
	}
	defer res.Body.Close()
	return readCapped(res.Body, s.readLimit)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return fmt.Errorf("s3 remove %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.signer.PresignGetObject(ctx, s.object(key), s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3 sign %s/%s: %w", s.bucket, key, err)
	}
	return req.URL, nil
}

// readCapped drains r, failing with domain.ErrFileTooLarge once more than
// limit bytes arrive.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading object: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}
