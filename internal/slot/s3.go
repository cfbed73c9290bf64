package slot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"addrbook/internal/addrbook"
	"addrbook/internal/config"
)

// defaultS3Timeout bounds a single read or write.
const defaultS3Timeout = 30 * time.Second

// S3Slot stores the slot value as one object:
//
//	s3://<bucket>/<prefix>/<name>.json
//
// A missing object reads as an empty slot.
type S3Slot struct {
	name     string
	bucket   string
	key      string
	client   *s3.Client
	uploader *manager.Uploader
	timeout  time.Duration
}

// NewS3Slot builds an S3 client from cfg and the default AWS credential chain.
// Static credentials in cfg take precedence over the chain. When S3Endpoint is
// set the client talks path-style to that endpoint (MinIO, Garage, ...).
func NewS3Slot(ctx context.Context, name string, cfg config.SlotConfig) (*S3Slot, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 slot requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3SlotWithClient(name, cfg.S3Bucket, cfg.S3Prefix, client), nil
}

// NewS3SlotWithClient creates a slot using an already configured client.
func NewS3SlotWithClient(name, bucket, prefix string, client *s3.Client) *S3Slot {
	return &S3Slot{
		name:     name,
		bucket:   bucket,
		key:      objectKey(prefix, name),
		client:   client,
		uploader: manager.NewUploader(client),
		timeout:  defaultS3Timeout,
	}
}

func objectKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name + ".json"
	}
	return path.Join(prefix, name+".json")
}

func (s *S3Slot) Name() string { return s.name }

// Key returns the object key backing the slot.
func (s *S3Slot) Key() string { return s.key }

// Read downloads the object. A missing object returns nil, nil.
func (s *S3Slot) Read() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return data, nil
}

// Write uploads data, replacing the object.
func (s *S3Slot) Write(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

func (s *S3Slot) Close() error { return nil }

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}

// Compile-time check that S3Slot implements addrbook.Slot interface
var _ addrbook.Slot = (*S3Slot)(nil)
