// Package storage archives raw audit report payloads to object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	auditapp "github.com/sitepulse/backend/internal/application/audit"
	infraconfig "github.com/sitepulse/backend/internal/infrastructure/config"
)

// Ensure S3ReportArchive implements the audit archiver
var _ auditapp.Archiver = (*S3ReportArchive)(nil)

// S3ReportArchive stores raw scoring payloads in an S3-compatible bucket,
// one object per audit. Works against AWS S3, MinIO, and RustFS.
type S3ReportArchive struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// NewS3ReportArchive creates an archive backed by the configured bucket
func NewS3ReportArchive(cfg infraconfig.StorageConfig, logger *zap.Logger) (*S3ReportArchive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage credentials are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3ReportArchive{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.Named("archive"),
	}, nil
}

// EnsureBucket creates the bucket if it does not exist. Call at startup.
func (a *S3ReportArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("checking bucket: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("creating bucket: %w", err)
	}
	return nil
}

// Store writes the raw payload of a completed audit
func (a *S3ReportArchive) Store(ctx context.Context, auditID uuid.UUID, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	key := objectKey(auditID)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archiving report: %w", err)
	}
	a.logger.Debug("Report archived",
		zap.String("audit_id", auditID.String()),
		zap.String("key", key),
		zap.Int("bytes", len(raw)))
	return nil
}

// Fetch reads an archived payload back
func (a *S3ReportArchive) Fetch(ctx context.Context, auditID uuid.UUID) (json.RawMessage, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey(auditID)),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching archived report: %w", err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func objectKey(auditID uuid.UUID) string {
	return fmt.Sprintf("audits/%s.json", auditID)
}
