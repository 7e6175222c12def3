package storage

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config holds S3-compatible storage configuration.
// Field tags match the option keys of the s3 service client.
type Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	// Endpoint targets S3-compatible services (MinIO, R2, Spaces).
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

func (c Config) validate() error {
	if c.Bucket == "" {
		return errors.Join(ErrInvalidConfig, errors.New("bucket is required"))
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return errors.Join(ErrInvalidConfig, errors.New("access_key and secret_key must be set together"))
	}
	return nil
}

// api is the part of *s3.Client the storage uses.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Storage uploads log archives to a bucket.
type S3Storage struct {
	client api
	cfg    Config
}

// New creates an S3Storage. Without static keys the SDK's default
// credential chain is not consulted; anonymous requests are sent.
func New(cfg Config) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			if cfg.AccessKey != "" {
				o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
			}
		},
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3Storage{client: s3.New(s3.Options{}, opts...), cfg: cfg}, nil
}

// Bucket returns the target bucket.
func (s *S3Storage) Bucket() string {
	return s.cfg.Bucket
}

// Put uploads body under key.
func (s *S3Storage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if len(body) == 0 {
		return ErrEmptyObject
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return wrapS3Error(err, ErrUploadFailed)
	}
	return nil
}

// Healthcheck verifies the bucket is reachable.
func (s *S3Storage) Healthcheck(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err != nil {
		return errors.Join(ErrHealthcheckFailed, wrapS3Error(err, ErrNotFound))
	}
	return nil
}

// ObjectKey builds a key of the form {prefix}/{channel}/{yyyy}/{mm}/{dd}/{hhmmss}-{uuid}{ext}.
func ObjectKey(prefix, channel string, t time.Time, ext string) string {
	var parts []string
	for _, segment := range strings.Split(prefix, "/") {
		if s := sanitizePathSegment(segment); s != "" {
			parts = append(parts, s)
		}
	}
	if s := sanitizePathSegment(channel); s != "" {
		parts = append(parts, s)
	}
	t = t.UTC()
	parts = append(parts, t.Format("2006"), t.Format("01"), t.Format("02"), t.Format("150405")+"-"+uuid.NewString()+ext)
	return strings.Join(parts, "/")
}

var pathSegmentRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizePathSegment strips traversal sequences and unsafe characters.
func sanitizePathSegment(segment string) string {
	segment = strings.Trim(segment, " /\\")
	segment = strings.ReplaceAll(segment, "..", "")
	segment = pathSegmentRegex.ReplaceAllString(segment, "_")
	return url.PathEscape(segment)
}
