package journal

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/dragdrop/internal/errors"
)

// MemorySink keeps batches in memory. It backs tests and runs without a
// configured bucket.
type MemorySink struct {
	mu      sync.Mutex
	batches [][]byte
}

// Put implements Sink.
func (m *MemorySink) Put(_ context.Context, batch []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, bytes.Clone(batch))
	return nil
}

// Batches returns a copy of the stored batches.
func (m *MemorySink) Batches() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.batches))
	copy(out, m.batches)
	return out
}

// Records decodes every stored batch.
func (m *MemorySink) Records() ([]Record, error) {
	var out []Record
	for _, b := range m.Batches() {
		recs, err := Decode(b)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// PutObjectAPI is the subset of the S3 client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink writes each batch to its own object under
// <prefix>/YYYY/MM/DD/<unix-nano>.jsonl.
type S3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Sink creates a sink writing to bucket under prefix.
func NewS3Sink(client PutObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Key returns the object key for a batch written at t.
func (s *S3Sink) Key(t time.Time) string {
	t = t.UTC()
	return path.Join(s.prefix, t.Format("2006/01/02"), fmt.Sprintf("%d.jsonl", t.UnixNano()))
}

// Put implements Sink.
func (s *S3Sink) Put(ctx context.Context, batch []byte) error {
	key := s.Key(s.now())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(batch),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// S3Options configures NewS3Client. Empty fields fall back to the AWS
// default configuration chain.
type S3Options struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// NewS3Client builds an S3 client from the AWS default configuration
// (environment, shared config and credentials files, SSO, web identity,
// container and instance credentials), overridden by opts. A client for a
// custom endpoint with no region anywhere uses us-east-1.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var load []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		load = append(load, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, load...)
	if err != nil {
		return nil, errors.New("E302").Wrap(err)
	}
	if cfg.Region == "" {
		if opts.Endpoint == "" {
			return nil, errors.New("E302").WithDetail("journal needs a region or an endpoint")
		}
		cfg.Region = "us-east-1"
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}
