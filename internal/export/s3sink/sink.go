// Package s3sink archives export snapshots to an S3-compatible bucket (AWS S3 or MinIO).
package s3sink

import (
	"bytes"
	"context"
	"fmt"

	"inventory_ledger/internal/export"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

var _ export.Sink = (*Sink)(nil)

// Config holds construction parameters. Credentials fall back to the default AWS
// chain when AccessKeyID is empty.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Sink writes objects into a single bucket.
type Sink struct {
	client *s3.Client
	bucket string
	log    *logrus.Logger
}

// New builds a Sink from cfg.
func New(ctx context.Context, cfg Config, logger *logrus.Logger, optFns ...func(*s3.Options)) (*Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("could not load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, append([]func(*s3.Options){func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)...)

	logger.Infof("Export sink: S3 bucket %s (region %s)", cfg.Bucket, region)
	return &Sink{client: client, bucket: cfg.Bucket, log: logger}, nil
}

func (s *Sink) Put(ctx context.Context, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.log.Errorf("Export sink: failed to put %s into bucket %s: %v", key, s.bucket, err)
		return fmt.Errorf("could not store export %s: %w", key, err)
	}
	s.log.Infof("Export sink: stored %s (%d bytes) in bucket %s", key, len(body), s.bucket)
	return nil
}
