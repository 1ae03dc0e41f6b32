package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	defaultRegion = "us-east-1"
	defaultKey    = "map.png"
)

// Mirror uploads each published snapshot to a single object key in an
// S3-compatible bucket (AWS S3 or MinIO).
type Mirror struct {
	client *s3.Client
	bucket string
	key    string
}

type Config struct {
	Region          string
	Bucket          string
	Key             string
	Endpoint        string // optional; enables a custom endpoint such as MinIO
	AccessKeyID     string // optional; falls back to the default credentials chain
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
}

func New(ctx context.Context, cfg Config) (*Mirror, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newMirror(client, cfg.Bucket, cfg.Key), nil
}

func newMirror(client *s3.Client, bucket, key string) *Mirror {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		key = defaultKey
	}
	return &Mirror{client: client, bucket: bucket, key: key}
}

func (m *Mirror) Mirror(ctx context.Context, body []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(m.key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", m.bucket, m.key, err)
	}
	return nil
}

func (m *Mirror) Location() string {
	return "s3://" + m.bucket + "/" + m.key
}
