package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// S3Backend archives snapshots in an S3 bucket. Writes require
// credentials; reads work anonymously against public buckets, so a
// backend configured without credentials is read-only.
type S3Backend struct {
	readClient  *s3.S3
	writeClient *s3.S3
	bucket      string
	prefix      string
	prefixes    map[interfaces.ContentType]string
	log         *slog.Logger
	locationURI string
	canWrite    bool
}

// S3BackendConfig holds the connection parameters for an S3 backend.
type S3BackendConfig struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Backend creates an S3 backend for the given bucket. When access
// keys are present the backend is writable, otherwise it only serves
// fetches via anonymous credentials.
func NewS3Backend(cfg S3BackendConfig, log *slog.Logger) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	readConfig := awsConfig.Copy()
	readConfig.Credentials = credentials.AnonymousCredentials
	readSession, err := session.NewSession(readConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create read session: %w", err)
	}

	backend := &S3Backend{
		readClient: s3.New(readSession),
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		prefixes: map[interfaces.ContentType]string{
			interfaces.SnapshotType: "snapshots",
			interfaces.ManifestType: "manifests",
		},
		log:         log,
		locationURI: fmt.Sprintf("s3://%s/%s", cfg.Bucket, cfg.Prefix),
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		writeConfig := awsConfig.Copy()
		writeConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		writeSession, err := session.NewSession(writeConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create write session: %w", err)
		}
		backend.writeClient = s3.New(writeSession)
		backend.canWrite = true
	}

	return backend, nil
}

// Fetch retrieves archived content by ID and type.
func (b *S3Backend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	key := b.getObjectKey(id, contentType)

	result, err := b.readClient.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to fetch object: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	b.log.Debug("Fetched archived content from S3",
		slog.String("key", key),
		slog.Int("size", len(data)))

	return data, nil
}

// Store writes data to the bucket and returns its content ID. Fails
// when the backend has no write credentials.
func (b *S3Backend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)
	if !b.canWrite {
		return id, fmt.Errorf("s3 backend %s has no write credentials", b.Name())
	}

	key := b.getObjectKey(id, contentType)

	_, err := b.writeClient.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return id, fmt.Errorf("failed to store object: %w", err)
	}

	b.log.Debug("Archived content to S3",
		slog.String("key", key),
		slog.String("content_id", id.String()))

	return id, nil
}

// Available checks whether the bucket can be reached.
func (b *S3Backend) Available(ctx context.Context) bool {
	_, err := b.readClient.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err != nil {
		b.log.Debug("S3 backend unavailable", "err", err, slog.String("bucket", b.bucket))
		return false
	}
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *S3Backend) Name() string {
	return fmt.Sprintf("s3-%s", b.bucket)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *S3Backend) LocationURI() string {
	return b.locationURI
}

func (b *S3Backend) getObjectKey(id interfaces.ContentID, contentType interfaces.ContentType) string {
	if b.prefix != "" {
		return fmt.Sprintf("%s/%s/%s", b.prefix, b.prefixes[contentType], id.String())
	}
	return fmt.Sprintf("%s/%s", b.prefixes[contentType], id.String())
}
