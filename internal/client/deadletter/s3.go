// Package deadletter archives orders that exhausted their delivery attempts
// to S3-compatible object storage before they are removed from the terminal.
package deadletter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/posqueue/internal/client/models"
)

var ErrNotConfigured = errors.New("dead-letter archive not configured")

// Config points the archive at a bucket. BaseEndpoint is set for MinIO and
// other S3-compatible servers and left empty for AWS.
type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
	Prefix       string
	// TerminalID is added to object keys so several terminals can share a bucket.
	TerminalID string
}

func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// PutObjectAPI is the subset of *s3.Client used by the archiver.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Client builds an S3 client from cfg, using static credentials when
// they are given and the default AWS credential chain otherwise.
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type S3Archiver struct {
	api    PutObjectAPI
	bucket string
	prefix string
	term   string
	now    func() time.Time
}

func NewS3Archiver(api PutObjectAPI, cfg Config) (*S3Archiver, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "failed-orders"
	}
	term := cfg.TerminalID
	if term == "" {
		term = "terminal"
	}
	return &S3Archiver{api: api, bucket: cfg.Bucket, prefix: prefix, term: term, now: time.Now}, nil
}

type document struct {
	Terminal   string                `json:"terminal"`
	ArchivedAt time.Time             `json:"archivedAt"`
	Orders     []*models.QueuedOrder `json:"orders"`
}

func (a *S3Archiver) key(at time.Time) string {
	return path.Join(a.prefix, a.term, at.UTC().Format("2006/01/02"),
		fmt.Sprintf("%d.json", at.UnixMilli()))
}

// Archive writes all orders as one JSON object.
func (a *S3Archiver) Archive(ctx context.Context, orders []*models.QueuedOrder) error {
	if len(orders) == 0 {
		return nil
	}

	at := a.now()
	body, err := json.Marshal(document{Terminal: a.term, ArchivedAt: at.UTC(), Orders: orders})
	if err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}

	_, err = a.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.key(at)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive: %w", err)
	}
	return nil
}
