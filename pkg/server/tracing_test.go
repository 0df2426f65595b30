package server

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/dragdrop/pkg/protocol"
)

// recorder is a TracerProvider that keeps every span it starts.
type recorder struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func newRecorder() *recorder {
	return &recorder{tracer: &recordingTracer{}}
}

func (r *recorder) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return r.tracer
}

type recordingTracer struct {
	noop.Tracer
	mu    sync.Mutex
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{name: name, kind: cfg.SpanKind(), attrs: map[attribute.Key]attribute.Value{}, mu: &t.mu}
	for _, kv := range cfg.Attributes() {
		s.attrs[kv.Key] = kv.Value
	}
	t.mu.Lock()
	t.spans = append(t.spans, s)
	t.mu.Unlock()
	return trace.ContextWithSpan(ctx, s), s
}

func (t *recordingTracer) find(name string) *recordedSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.spans {
		if s.name == name {
			return s
		}
	}
	return nil
}

type recordedSpan struct {
	noop.Span
	mu     *sync.Mutex
	name   string
	kind   trace.SpanKind
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	ended  bool
}

func (s *recordedSpan) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

func (s *recordedSpan) End(...trace.SpanEndOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
}

func (s *recordedSpan) attr(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attrs[attribute.Key(key)].Emit()
}

func TestDragSpan(t *testing.T) {
	rec := newRecorder()
	h := newTestHost(t, WithHostID("s1"), WithHostTracer(context.Background(), rec.tracer))

	apply(t, h, pointer(protocol.EventPointerDown, "card", 20, 20))
	if rec.tracer.find(dragSpanName) != nil {
		t.Fatal("span started before activation")
	}
	apply(t, h, pointer(protocol.EventPointerMove, "card", 200, 100))
	apply(t, h, pointer(protocol.EventPointerUp, "card", 350, 100))

	span := rec.tracer.find(dragSpanName)
	if span == nil {
		t.Fatal("no drag span")
	}
	if !span.ended || span.status != codes.Ok {
		t.Errorf("span ended=%v status=%v", span.ended, span.status)
	}
	if span.kind != trace.SpanKindInternal {
		t.Errorf("span kind = %v, want internal", span.kind)
	}
	for key, want := range map[string]string{
		"dragd.session_id": "s1",
		"dragd.source_id":  "card",
		"dragd.outcome":    "dropped",
		"dragd.target_id":  "done",
		"dragd.press_x":    "20",
	} {
		if got := span.attr(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestDragSpanAbortedOnClose(t *testing.T) {
	rec := newRecorder()
	h, err := NewHost(canonicalPage(t), testDragConfig(), WithHostTracer(context.Background(), rec.tracer))
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}

	apply(t, h, pointer(protocol.EventPointerDown, "card", 20, 20))
	apply(t, h, pointer(protocol.EventPointerMove, "card", 200, 100))
	h.Close()

	span := rec.tracer.find(dragSpanName)
	if span == nil || !span.ended || span.status != codes.Error {
		t.Fatalf("span = %+v", span)
	}
}

func TestRequestInstrumentation(t *testing.T) {
	rec := newRecorder()
	reg := prometheus.NewRegistry()
	srv, err := New([]byte(testPage), DefaultServerConfig(),
		WithRegistry(reg),
		WithTracerProvider(rec),
		WithLogger(newTestLogger(io.Discard)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	get(t, ts.URL+"/healthz")

	span := rec.tracer.find("dragd GET /healthz")
	if span == nil {
		t.Fatal("no request span")
	}
	if !span.ended || span.attr("http.status_code") != "200" || span.attr("http.route") != "/healthz" {
		t.Errorf("span = %+v", span)
	}
	if span.kind != trace.SpanKindServer {
		t.Errorf("request span kind = %v, want server", span.kind)
	}

	m := get(t, ts.URL+"/metrics")
	if want := `dragd_http_requests_total{code="200",route="/healthz"} 1`; !strings.Contains(m, want) {
		t.Errorf("metrics missing %q", want)
	}
}
