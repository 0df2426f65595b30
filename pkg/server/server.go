package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	clientdist "github.com/vango-dev/dragdrop/client/dist"
	derrors "github.com/vango-dev/dragdrop/internal/errors"
	"github.com/vango-dev/dragdrop/pkg/dom"
	"github.com/vango-dev/dragdrop/pkg/journal"
)

// ClientScriptPath is where the browser client is served.
const ClientScriptPath = "/_dragd/client.js"

// idPrefix prefixes the ids given to page elements that have none.
const idPrefix = "dd-"

// ErrSessionClosed is returned when writing to a closed session.
var ErrSessionClosed = errors.New("server: session closed")

// Server serves one page and runs a drag session per connection.
type Server struct {
	config  *ServerConfig
	page    []byte // canonical page every session parses
	served  []byte // canonical page with the client script
	handler http.Handler

	upgrader websocket.Upgrader
	registry *prometheus.Registry
	metrics  *metrics
	journal  *journal.Journal
	tracer   trace.Tracer
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithJournal records every finished drag in j.
func WithJournal(j *journal.Journal) Option {
	return func(s *Server) {
		s.journal = j
	}
}

// WithRegistry registers the server's metrics with reg and serves reg at
// /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithTracerProvider sets the tracer provider. Default: the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a Server for page. Elements of the page without an id get a
// generated one so the client can address them. New fails when the page
// cannot be parsed or a drag selector is invalid.
func New(page []byte, config *ServerConfig, opts ...Option) (*Server, error) {
	config = config.withDefaults()

	s := &Server{
		config:   config,
		logger:   slog.Default(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	if s.registry == nil {
		s.registry = newRegistry()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.metrics = newMetrics(s.registry)

	canonical, err := CanonicalPage(page)
	if err != nil {
		return nil, err
	}
	s.page = canonical
	s.served = injectScript(canonical, ClientScriptPath, config.Drag.Draggable)

	// Probe the page once so configuration errors surface at startup.
	probe, err := NewHost(s.page, config.Drag, WithHostLogger(s.logger))
	if err != nil {
		return nil, err
	}
	if els, _ := probe.Document().QuerySelectorAll(config.Drag.Draggable); len(els) == 0 {
		s.logger.Warn(derrors.New("E403").Message, "selector", config.Drag.Draggable)
	}
	probe.Close()

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     config.CheckOrigin,
	}
	s.handler = s.routes()
	return s, nil
}

// CanonicalPage gives every element of page without an id a generated
// one. Server serves and hosts the canonical form; offline hosts should be
// built from it too so their patches name the same elements.
func CanonicalPage(page []byte) ([]byte, error) {
	canonical, err := dom.Canonicalize(bytes.NewReader(page), idPrefix)
	if err != nil {
		return nil, derrors.New("E401").Wrap(err)
	}
	return canonical, nil
}

// injectScript adds a script tag for src before the last </body>. The
// client reads the draggable selector from the tag's data-draggable
// attribute to suppress native drag and selection on press.
func injectScript(page []byte, src, draggable string) []byte {
	tag := []byte(`<script src="` + src + `" data-draggable="` + html.EscapeString(draggable) + `" defer></script>`)
	i := bytes.LastIndex(page, []byte("</body>"))
	if i < 0 {
		return append(bytes.Clone(page), tag...)
	}
	out := make([]byte, 0, len(page)+len(tag))
	out = append(out, page[:i]...)
	out = append(out, tag...)
	return append(out, page[i:]...)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/", s.handlePage)
	r.Get(ClientScriptPath, handleClientScript)
	r.Get("/ws", s.HandleWebSocket)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	return r
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(s.served)
}

func handleClientScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Write(clientdist.DragdJS)
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// HandleWebSocket upgrades the request and runs a session until the
// connection closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)

	id := newSessionID()
	logger := s.logger.With("session_id", id, "remote", r.RemoteAddr)
	host, err := NewHost(s.page, s.config.Drag,
		WithHostID(id),
		WithHostLogger(s.logger),
		WithHostJournal(s.journal),
		WithHostTracer(context.WithoutCancel(r.Context()), s.tracer),
		withHostMetrics(s.metrics),
	)
	if err != nil {
		// New already built a host from the same page and config.
		logger.Error("session setup failed", "error", err)
		conn.Close()
		return
	}

	session := newSession(id, conn, host, s.config, s.metrics, s.logger)
	if !s.register(session) {
		host.Close()
		session.Close()
		return
	}
	defer s.unregister(session)

	logger.Info("session started")
	session.ReadLoop()
	logger.Info("session ended")
}

// register adds a session. It returns false once shutdown has begun.
func (s *Server) register(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		return false
	}
	s.sessions[sess.ID] = sess
	s.wg.Add(1)
	s.metrics.sessionsActive.Inc()
	return true
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions != nil {
		delete(s.sessions, sess.ID)
	}
	s.metrics.sessionsActive.Dec()
	s.wg.Done()
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func newSessionID() string {
	return uuid.NewString()
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes every session, waits for their read loops to finish and
// stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = nil
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}

	waited := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		s.logger.Warn("sessions still running at shutdown deadline")
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
