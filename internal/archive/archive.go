package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"committee-notifier/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the subset of the S3 client used here.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store keeps a copy of every rendered notice in an S3-compatible bucket.
type Store struct {
	client ObjectPutter
	bucket string
	prefix string
}

// New builds a store from configuration. Static keys are used when given,
// otherwise the default AWS credential chain.
func New(ctx context.Context, cfg config.ArchiveConfig) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure archive client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client ObjectPutter, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key for a notice generated at t by run runID.
func (s *Store) Key(t time.Time, runID string) string {
	name := fmt.Sprintf("notice-%s-%s.html", t.Format("2006-01-02"), runID)
	return path.Join(s.prefix, t.Format("2006"), t.Format("01"), name)
}

// SaveNotice uploads html and returns its key.
func (s *Store) SaveNotice(ctx context.Context, generatedAt time.Time, runID, html string) (string, error) {
	key := s.Key(generatedAt, runID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(html),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive notice %s: %w", key, err)
	}
	return key, nil
}
