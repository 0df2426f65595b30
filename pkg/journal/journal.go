// Package journal records finished drags and ships them to durable storage
// as JSON lines.
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/dragdrop/internal/errors"
	"github.com/vango-dev/dragdrop/pkg/geom"
)

// DefaultMaxBuffer is the number of records held before the oldest are
// dropped.
const DefaultMaxBuffer = 10_000

// Record is one finished drag session.
type Record struct {
	Session  string        `json:"session"`
	Outcome  string        `json:"outcome"`
	Source   string        `json:"source"`
	Target   string        `json:"target,omitempty"`
	Press    geom.Point    `json:"press"`
	Release  geom.Point    `json:"release"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

// Sink stores one encoded batch of records.
type Sink interface {
	Put(ctx context.Context, batch []byte) error
}

// Journal buffers records in memory until they are flushed to a Sink.
// It is safe for concurrent use.
type Journal struct {
	mu      sync.Mutex
	sink    Sink
	buf     []Record
	max     int
	dropped uint64
	logger  *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithMaxBuffer caps the number of buffered records.
func WithMaxBuffer(n int) Option {
	return func(j *Journal) {
		if n > 0 {
			j.max = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) {
		if l != nil {
			j.logger = l
		}
	}
}

// New creates a Journal writing to sink.
func New(sink Sink, opts ...Option) *Journal {
	j := &Journal{
		sink:   sink,
		max:    DefaultMaxBuffer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.logger = j.logger.With("component", "journal")
	return j
}

// Append buffers r. When the buffer is full the oldest record is dropped.
func (j *Journal) Append(r Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.buf) >= j.max {
		j.buf = j.buf[1:]
		j.dropped++
	}
	j.buf = append(j.buf, r)
}

// Len returns the number of buffered records.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.buf)
}

// Dropped returns how many records were discarded because the buffer was
// full.
func (j *Journal) Dropped() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

// Flush writes all buffered records to the sink as one batch. On failure
// the records are put back at the front of the buffer.
func (j *Journal) Flush(ctx context.Context) error {
	j.mu.Lock()
	batch := j.buf
	j.buf = nil
	j.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	data, err := Encode(batch)
	if err == nil {
		err = j.sink.Put(ctx, data)
	}
	if err != nil {
		j.requeue(batch)
		return errors.New("E301").Wrap(err)
	}

	j.logger.Debug("journal flushed", "records", len(batch), "bytes", len(data))
	return nil
}

func (j *Journal) requeue(batch []Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	merged := append(batch, j.buf...)
	if over := len(merged) - j.max; over > 0 {
		merged = merged[over:]
		j.dropped += uint64(over)
	}
	j.buf = merged
}

// Run flushes every interval until ctx is done, then flushes once more
// with a short grace period.
func (j *Journal) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Flush(ctx); err != nil {
				j.logger.Warn("journal flush failed", "error", err, "pending", j.Len())
			}
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			if err := j.Flush(final); err != nil {
				j.logger.Error("final journal flush failed", "error", err, "lost", j.Len())
			}
			cancel()
			return
		}
	}
}

// Encode renders records as JSON lines.
func Encode(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Decode parses JSON lines produced by Encode.
func Decode(data []byte) ([]Record, error) {
	var out []Record
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var r Record
		if err := dec.Decode(&r); err != nil {
			return nil, errors.New("E303").Wrap(err)
		}
		out = append(out, r)
	}
	return out, nil
}
