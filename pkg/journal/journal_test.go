package journal

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	derrors "github.com/vango-dev/dragdrop/internal/errors"
	"github.com/vango-dev/dragdrop/pkg/geom"
)

func record(source, outcome string) Record {
	return Record{
		Session:  "s1",
		Outcome:  outcome,
		Source:   source,
		Press:    geom.Pt(1, 2),
		Release:  geom.Pt(30, 40),
		Duration: 250 * time.Millisecond,
		At:       time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}
}

type failingSink struct {
	err error
}

func (f failingSink) Put(context.Context, []byte) error { return f.err }

func TestFlushWritesJSONLines(t *testing.T) {
	sink := &MemorySink{}
	j := New(sink)

	if err := j.Flush(context.Background()); err != nil {
		t.Fatalf("empty Flush: %v", err)
	}
	if len(sink.Batches()) != 0 {
		t.Fatal("empty Flush wrote a batch")
	}

	a := record("card-1", "dropped")
	a.Target = "done"
	j.Append(a)
	j.Append(record("card-2", "cancelled"))
	if err := j.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if j.Len() != 0 {
		t.Errorf("Len after flush = %d", j.Len())
	}

	batches := sink.Batches()
	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(batches))
	}
	lines := strings.Split(strings.TrimSpace(string(batches[0])), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2:\n%s", len(lines), batches[0])
	}
	if !strings.Contains(lines[0], `"target":"done"`) || !strings.Contains(lines[0], `"press":{"x":1,"y":2}`) {
		t.Errorf("line 0 = %s", lines[0])
	}
	if strings.Contains(lines[1], `"target"`) {
		t.Errorf("empty target not omitted: %s", lines[1])
	}

	got, err := sink.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(got) != 2 || got[1].Source != "card-2" {
		t.Fatalf("Records = %+v", got)
	}
	if !got[0].At.Equal(a.At) {
		t.Errorf("At = %v, want %v", got[0].At, a.At)
	}
	got[0].At = a.At
	if got[0] != a {
		t.Errorf("Records[0] = %+v, want %+v", got[0], a)
	}
}

func TestFlushFailureRequeues(t *testing.T) {
	boom := errors.New("boom")
	j := New(failingSink{err: boom}, WithMaxBuffer(3))
	j.Append(record("a", "dropped"))
	j.Append(record("b", "dropped"))

	err := j.Flush(context.Background())
	if !derrors.Is(err, "E301") || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want E301 wrapping boom", err)
	}
	if j.Len() != 2 {
		t.Fatalf("Len after failed flush = %d, want 2", j.Len())
	}

	j.Append(record("c", "dropped"))
	j.Append(record("d", "dropped"))
	if j.Len() != 3 || j.Dropped() != 1 {
		t.Errorf("Len = %d, Dropped = %d; want 3, 1", j.Len(), j.Dropped())
	}
}

func TestRunFlushesOnCancel(t *testing.T) {
	sink := &MemorySink{}
	j := New(sink)
	j.Append(record("a", "released"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if len(sink.Batches()) != 1 {
		t.Errorf("batches = %d, want final flush", len(sink.Batches()))
	}
}

func TestRunFlushesPeriodically(t *testing.T) {
	sink := &MemorySink{}
	j := New(sink)
	j.Append(record("a", "dropped"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx, 10*time.Millisecond)

	deadline := time.Now().Add(5 * time.Second)
	for len(sink.Batches()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no periodic flush")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode([]byte("{\"session\":1}\n")); !derrors.Is(err, "E303") {
		t.Errorf("err = %v, want E303", err)
	}
}

type fakeS3 struct {
	mu    sync.Mutex
	calls []*s3.PutObjectInput
	body  []string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.calls = append(f.calls, in)
	f.body = append(f.body, string(b))
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink(t *testing.T) {
	client := &fakeS3{}
	sink := NewS3Sink(client, "bucket", "drags")
	at := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	sink.now = func() time.Time { return at }

	j := New(sink)
	j.Append(record("card", "dropped"))
	if err := j.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if len(client.calls) != 1 {
		t.Fatalf("PutObject calls = %d", len(client.calls))
	}
	in := client.calls[0]
	wantKey := "drags/2026/01/02/1767323045000000006.jsonl"
	if aws.ToString(in.Key) != wantKey {
		t.Errorf("Key = %q, want %q", aws.ToString(in.Key), wantKey)
	}
	if aws.ToString(in.Bucket) != "bucket" || aws.ToString(in.ContentType) != "application/x-ndjson" {
		t.Errorf("Bucket = %q, ContentType = %q", aws.ToString(in.Bucket), aws.ToString(in.ContentType))
	}
	if !strings.Contains(client.body[0], `"source":"card"`) {
		t.Errorf("body = %s", client.body[0])
	}
}

func TestS3SinkError(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	sink := NewS3Sink(client, "bucket", "")
	err := sink.Put(context.Background(), []byte("{}\n"))
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Errorf("err = %v", err)
	}
}

// isolateAWS points the AWS configuration chain at empty files and clears
// the environment it reads.
func isolateAWS(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AWS_CONFIG_FILE", empty)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", empty)
	for _, k := range []string{
		"AWS_PROFILE", "AWS_DEFAULT_PROFILE", "AWS_REGION", "AWS_DEFAULT_REGION",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN",
		"AWS_ENDPOINT_URL", "AWS_ENDPOINT_URL_S3",
	} {
		t.Setenv(k, "")
	}
}

func TestNewS3Client(t *testing.T) {
	ctx := context.Background()

	t.Run("no region", func(t *testing.T) {
		isolateAWS(t)
		if _, err := NewS3Client(ctx, S3Options{}); !derrors.Is(err, "E302") {
			t.Errorf("err = %v, want E302", err)
		}
	})

	t.Run("endpoint only", func(t *testing.T) {
		isolateAWS(t)
		c, err := NewS3Client(ctx, S3Options{Endpoint: "http://localhost:9000", PathStyle: true})
		if err != nil {
			t.Fatalf("NewS3Client: %v", err)
		}
		o := c.Options()
		if o.Region != "us-east-1" || !o.UsePathStyle || aws.ToString(o.BaseEndpoint) != "http://localhost:9000" {
			t.Errorf("Options = %+v", o)
		}
	})

	t.Run("region from environment", func(t *testing.T) {
		isolateAWS(t)
		t.Setenv("AWS_REGION", "eu-west-1")
		c, err := NewS3Client(ctx, S3Options{})
		if err != nil {
			t.Fatalf("NewS3Client: %v", err)
		}
		if c.Options().Region != "eu-west-1" {
			t.Errorf("Region = %q", c.Options().Region)
		}
	})

	t.Run("configured region wins", func(t *testing.T) {
		isolateAWS(t)
		t.Setenv("AWS_REGION", "eu-west-1")
		c, err := NewS3Client(ctx, S3Options{Region: "ap-south-1"})
		if err != nil {
			t.Fatalf("NewS3Client: %v", err)
		}
		if c.Options().Region != "ap-south-1" {
			t.Errorf("Region = %q", c.Options().Region)
		}
	})

	t.Run("credentials from environment", func(t *testing.T) {
		isolateAWS(t)
		t.Setenv("AWS_ACCESS_KEY_ID", "id")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
		c, err := NewS3Client(ctx, S3Options{Region: "us-east-1"})
		if err != nil {
			t.Fatalf("NewS3Client: %v", err)
		}
		creds, err := c.Options().Credentials.Retrieve(ctx)
		if err != nil || creds.AccessKeyID != "id" || creds.SecretAccessKey != "secret" {
			t.Errorf("creds = %+v, %v", creds, err)
		}
	})

	t.Run("credentials from shared file", func(t *testing.T) {
		isolateAWS(t)
		creds := filepath.Join(t.TempDir(), "credentials")
		data := "[default]\naws_access_key_id = file-id\naws_secret_access_key = file-secret\n"
		if err := os.WriteFile(creds, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("AWS_SHARED_CREDENTIALS_FILE", creds)
		c, err := NewS3Client(ctx, S3Options{Region: "us-east-1"})
		if err != nil {
			t.Fatalf("NewS3Client: %v", err)
		}
		got, err := c.Options().Credentials.Retrieve(ctx)
		if err != nil || got.AccessKeyID != "file-id" {
			t.Errorf("creds = %+v, %v", got, err)
		}
	})
}
