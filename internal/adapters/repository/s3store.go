package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/okian/books/internal/domain/model"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config describes where the document object lives.
type S3Config struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string // optional, for S3-compatible services
	// AccessKeyID and SecretAccessKey are optional; the default credential chain is used otherwise.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store keeps the collection as one JSON object in a bucket.
type S3Store struct {
	client S3API
	bucket string
	key    string
}

// NewS3Client builds an S3 client from cfg, honoring a custom endpoint when set.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Store creates a store for s3://bucket/key using client.
func NewS3Store(client S3API, bucket, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key}
}

// Backend implements Store.
func (s *S3Store) Backend() string { return "s3" }

// Load implements Store.
func (s *S3Store) Load(ctx context.Context) (model.Collection, error) {
	const op = "repository.s3.load"
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, notFoundError(op, s.location())
		}
		return nil, accessError(op, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, accessError(op, err)
	}
	books, err := Decode(data)
	if err != nil {
		return nil, malformedError(op, err)
	}
	return books, nil
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, books model.Collection) error {
	const op = "repository.s3.save"
	data, err := Encode(books)
	if err != nil {
		return accessError(op, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json; charset=utf-8"),
	})
	if err != nil {
		return accessError(op, err)
	}
	return nil
}

// Init implements Initializer.
func (s *S3Store) Init(ctx context.Context) (bool, error) {
	return initIfMissing(ctx, s)
}

func (s *S3Store) location() string {
	return "s3://" + s.bucket + "/" + s.key
}
