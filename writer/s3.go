package writer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "intxexport/config"
	"intxexport/logger"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader copies written artifacts to a bucket under a run partition.
type S3Uploader struct {
	client putObjectAPI
	bucket string
	prefix string
	log    *logger.Log
}

// NewS3Uploader builds an S3 client from the storage configuration. Static
// keys are used when both are set; otherwise the default AWS chain applies.
func NewS3Uploader(ctx context.Context, cfg appconfig.S3Config) (*S3Uploader, error) {
	log := logger.GetLogger()

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.WithComponent("s3_uploader").WithError(err).Warn("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"bucket": cfg.Bucket,
		"region": cfg.Region,
		"prefix": cfg.Prefix,
	}).Info("s3 uploader initialized")

	return newS3Uploader(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Uploader(client putObjectAPI, bucket, prefix string) *S3Uploader {
	return &S3Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		log:    logger.GetLogger(),
	}
}

// Key returns the object key for file in the partition of a run.
func (u *S3Uploader) Key(runID string, day time.Time, file string) string {
	parts := []string{
		fmt.Sprintf("date=%s", day.UTC().Format("2006-01-02")),
		fmt.Sprintf("run=%s", runID),
		file,
	}
	if u.prefix != "" {
		parts = append([]string{u.prefix}, parts...)
	}
	return path.Join(parts...)
}

// Upload sends the artifact and returns its s3:// URI.
func (u *S3Uploader) Upload(ctx context.Context, runID string, day time.Time, art Artifact) (string, error) {
	f, err := os.Open(art.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := u.Key(runID, day, filepath.Base(art.Path))
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(art.Bytes),
		ContentType:   aws.String(contentType(art.Format)),
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s to s3://%s/%s: %w", art.Name, u.bucket, key, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	u.log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"artifact": art.Name,
		"uri":      uri,
		"bytes":    art.Bytes,
	}).Info("artifact uploaded")
	return uri, nil
}

func contentType(format string) string {
	if format == appconfig.FormatCSV {
		return "text/csv"
	}
	return "application/octet-stream"
}
