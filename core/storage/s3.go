package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"venue-booking/core/config"
	"venue-booking/core/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver stores a JSON document under key.
type Archiver interface {
	Archive(ctx context.Context, key string, doc any) error
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Archiver struct {
	client objectPutter
	bucket string
}

// NewArchiver returns an S3 archiver, or a no-op one when no bucket is configured.
func NewArchiver(cfg config.StorageConfig) Archiver {
	if cfg.Bucket == "" {
		logger.Info("Storage:NewArchiver:Disabled")
		return NopArchiver{}
	}

	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.Endpoint != "",
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	logger.Info("Storage:NewArchiver", "bucket", cfg.Bucket, "region", cfg.Region)
	return &S3Archiver{client: s3.New(opts), bucket: cfg.Bucket}
}

func (a *S3Archiver) Archive(ctx context.Context, key string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		logger.Error("S3Archiver:Archive:Error:", err, "key", key)
		return err
	}
	return nil
}

type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, string, any) error { return nil }
