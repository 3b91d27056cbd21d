package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/asktube/asktube/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ClientConfig holds configuration for S3Client
type S3ClientConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// S3Client archives raw transcripts to S3-compatible storage so videos can be
// rechunked without another provider fetch.
type S3Client struct {
	client *s3.Client
	bucket string
}

// NewS3Client creates a new S3Client with the given configuration
func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*S3Client, error) {
	// Custom resolver for S3-compatible endpoints (MinIO and friends)
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		},
	)

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		config.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Client{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func transcriptKey(videoID string) string {
	return fmt.Sprintf("transcripts/%s.json", videoID)
}

// PutTranscript stores the raw transcript segments for a video as JSON
func (c *S3Client) PutTranscript(ctx context.Context, videoID string, segments []domain.TranscriptSegment) error {
	body, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(transcriptKey(videoID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to store transcript: %w", err)
	}
	return nil
}

// GetTranscript fetches a previously archived transcript
func (c *S3Client) GetTranscript(ctx context.Context, videoID string) ([]domain.TranscriptSegment, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(transcriptKey(videoID)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	var segments []domain.TranscriptSegment
	if err := json.Unmarshal(body, &segments); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return segments, nil
}

// DeleteTranscript removes an archived transcript
func (c *S3Client) DeleteTranscript(ctx context.Context, videoID string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(transcriptKey(videoID)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}
