package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// S3Archive stores reports in an S3-compatible bucket
type S3Archive struct {
	client *s3.Client
	bucket string
	now    func() time.Time
	logger zerolog.Logger
}

// NewS3Archive creates an S3 archive. With an endpoint the client talks to
// it directly with static credentials (MinIO); otherwise the default AWS
// credential chain is used.
func NewS3Archive(ctx context.Context, cfg ArchiveConfig, logger zerolog.Logger) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 archive: bucket is required")
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		// Built directly: LoadDefaultConfig queries IMDS, which hangs outside EC2
		client = s3.New(s3.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
			UsePathStyle: true, // Required for MinIO
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Archive{
		client: client,
		bucket: cfg.Bucket,
		now:    time.Now,
		logger: logger.With().Str("component", "archive").Logger(),
	}, nil
}

// Save uploads a report under reports/<date>/<uuid>-<filename>
func (s *S3Archive) Save(ctx context.Context, in ArchiveInput) (*ArchivedReport, error) {
	now := s.now()
	key := objectKey(now, uuid.New().String(), in.Filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          in.Reader,
		ContentType:   aws.String(in.ContentType),
		ContentLength: aws.Int64(in.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading to s3: %w", err)
	}

	s.logger.Info().Str("key", key).Int64("size", in.Size).Msg("report archived")

	return &ArchivedReport{
		Key:        key,
		Size:       in.Size,
		ArchivedAt: now,
	}, nil
}

func objectKey(at time.Time, id, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "report"
	}
	return fmt.Sprintf("reports/%s/%s-%s", at.Format("2006/01/02"), id, name)
}

// NewArchive builds the configured archive. A failing S3 setup is logged
// and replaced by NoopArchive so report downloads keep working.
func NewArchive(ctx context.Context, cfg ArchiveConfig, logger zerolog.Logger) Archive {
	if !cfg.Enabled() {
		return NewNoopArchive()
	}

	archive, err := NewS3Archive(ctx, cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("report archive unavailable, continuing without it")
		return NewNoopArchive()
	}

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Str("endpoint", cfg.Endpoint).
		Msg("report archive initialized")
	return archive
}
