package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/draftsmith/draftsmith/config"
)

// ObjectStore is the binary object store capability. Store writes the bytes
// under the given unique id and returns an opaque object reference;
// AccessURL turns that reference into a durable, time-independent URL.
type ObjectStore interface {
	Store(ctx context.Context, data []byte, contentType, uniqueID string) (string, error)
	AccessURL(ctx context.Context, ref string) (string, error)
}

// S3ObjectStore stores uploads in an S3-compatible bucket fronted by a
// public base URL (a CDN or public bucket endpoint).
type S3ObjectStore struct {
	client        *s3.Client
	bucket        string
	folder        string
	publicBaseURL string
}

// NewS3ObjectStore builds a client from application config. Static
// credentials plus a custom base endpoint cover both AWS and R2/minio style
// deployments.
func NewS3ObjectStore(cfg config.AppConfig) (*S3ObjectStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		awsconfig.WithRegion(cfg.S3Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	return &S3ObjectStore{
		client:        client,
		bucket:        cfg.S3Bucket,
		folder:        cfg.S3UploadFolder,
		publicBaseURL: strings.TrimRight(cfg.S3PublicBaseURL, "/"),
	}, nil
}

func (s *S3ObjectStore) Store(ctx context.Context, data []byte, contentType, uniqueID string) (string, error) {
	key := s.folder + "/" + uniqueID

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

func (s *S3ObjectStore) AccessURL(ctx context.Context, ref string) (string, error) {
	if s.publicBaseURL == "" {
		return "", fmt.Errorf("no public base url configured for object %s", ref)
	}
	return s.publicBaseURL + "/" + ref, nil
}
