package providers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
)

// S3Options configures an S3 compatible archive. Endpoint is set for
// non-AWS stores such as R2 or MinIO.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive writes artifacts to an S3 bucket
type S3Archive struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Archive creates an S3 archive. Static credentials are used when
// given, otherwise the default AWS credential chain.
func NewS3Archive(ctx context.Context, opts S3Options) (*S3Archive, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(nonEmpty(opts.Region, "us-east-1")),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{client: client, bucket: opts.Bucket, prefix: opts.Prefix}, nil
}

// Put implements artifact.Archive
func (a *S3Archive) Put(ctx context.Context, art *artifact.Artifact) (string, error) {
	body, err := encodeArtifact(art)
	if err != nil {
		return "", err
	}

	key := ObjectKey(a.prefix, art)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"account-id": art.AccountID,
			"kind":       string(art.Kind),
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return "s3://" + a.bucket + "/" + key, nil
}

// Close implements Archive
func (a *S3Archive) Close() error { return nil }

func nonEmpty(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
