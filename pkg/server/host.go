package server

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/dragdrop/internal/errors"
	"github.com/vango-dev/dragdrop/pkg/dnd"
	"github.com/vango-dev/dragdrop/pkg/dom"
	"github.com/vango-dev/dragdrop/pkg/geom"
	"github.com/vango-dev/dragdrop/pkg/input"
	"github.com/vango-dev/dragdrop/pkg/journal"
	"github.com/vango-dev/dragdrop/pkg/protocol"
)

// Host owns one document, its input surface and its drag controller. It
// turns protocol events into pointer dispatches and collects the resulting
// document mutations as patches. A Host does no I/O; Session puts one on a
// WebSocket and the replay command drives one from a file.
//
// A Host is not safe for concurrent use.
type Host struct {
	id         string
	doc        *dom.Document
	surface    *input.Surface
	controller *dnd.Controller
	sub        *input.Subscription
	unobserve  func()

	pending     []protocol.Patch
	last        input.PointerEvent
	activatedAt time.Time

	logger  *slog.Logger
	metrics *metrics
	journal *journal.Journal
	tracer  *dragTracer
	now     func() time.Time
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHostID sets the id recorded in journal entries and spans.
func WithHostID(id string) HostOption {
	return func(h *Host) {
		h.id = id
	}
}

// WithHostLogger sets the logger.
func WithHostLogger(l *slog.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithHostJournal records every finished drag in j.
func WithHostJournal(j *journal.Journal) HostOption {
	return func(h *Host) {
		h.journal = j
	}
}

// WithHostTracer starts drag spans from ctx using tracer.
func WithHostTracer(ctx context.Context, tracer trace.Tracer) HostOption {
	return func(h *Host) {
		h.tracer.ctx = ctx
		h.tracer.tracer = tracer
	}
}

func withHostMetrics(m *metrics) HostOption {
	return func(h *Host) {
		h.metrics = m
	}
}

// NewHost parses page and attaches a drag controller configured by cfg.
func NewHost(page []byte, cfg DragConfig, opts ...HostOption) (*Host, error) {
	doc, err := dom.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, errors.New("E401").Wrap(err)
	}

	h := &Host{
		doc:     doc,
		surface: input.NewSurface(),
		logger:  slog.Default(),
		tracer: &dragTracer{
			ctx:    context.Background(),
			tracer: noop.NewTracerProvider().Tracer(tracerName),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.tracer.session = h.id
	h.logger = h.logger.With("component", "host", "session_id", h.id)

	dndOpts := append(cfg.controllerOptions(),
		dnd.WithLogger(h.logger),
		dnd.WithObserver(dnd.Observers(h.tracer, dnd.ObserverFuncs{
			OnActivated: h.activated,
			OnFinished:  h.finished,
		})),
	)
	c, err := dnd.New(doc, cfg.Draggable, dndOpts...)
	if err != nil {
		return nil, errors.New("E402").Wrap(err)
	}
	c.OnDragEnd = h.dropped
	h.controller = c
	h.sub = c.Attach(h.surface)
	h.unobserve = doc.Observe(h.record)
	return h, nil
}

// Document returns the host's document.
func (h *Host) Document() *dom.Document {
	return h.doc
}

// Controller returns the host's drag controller.
func (h *Host) Controller() *dnd.Controller {
	return h.controller
}

// Apply feeds one client event into the document.
func (h *Host) Apply(ev *protocol.Event) (input.Result, error) {
	h.metrics.event(ev.Type)

	switch ev.Type {
	case protocol.EventPointerDown, protocol.EventPointerMove, protocol.EventPointerUp:
		p, ok := ev.Payload.(*protocol.PointerEventData)
		if !ok {
			return input.Result{}, fmt.Errorf("%w: %s payload is %T", protocol.ErrUnknownEvent, ev.Type, ev.Payload)
		}
		pe := input.PointerEvent{
			Kind:   pointerKind(ev.Type),
			Button: input.Button(p.Button),
			Client: geom.Pt(p.ClientX, p.ClientY),
			Page:   geom.Pt(p.PageX, p.PageY),
			Target: h.doc.ElementByID(ev.Target),
		}
		h.last = pe
		return h.surface.Dispatch(pe), nil

	case protocol.EventScroll:
		p, ok := ev.Payload.(*protocol.ScrollEventData)
		if !ok {
			return input.Result{}, fmt.Errorf("%w: %s payload is %T", protocol.ErrUnknownEvent, ev.Type, ev.Payload)
		}
		h.doc.SetScroll(geom.Pt(p.X, p.Y))
		return input.Result{}, nil

	case protocol.EventResize:
		p, ok := ev.Payload.(*protocol.ResizeEventData)
		if !ok {
			return input.Result{}, fmt.Errorf("%w: %s payload is %T", protocol.ErrUnknownEvent, ev.Type, ev.Payload)
		}
		h.doc.SetViewport(p.Width, p.Height)
		return input.Result{}, nil

	default:
		return input.Result{}, fmt.Errorf("%w: %s", protocol.ErrUnknownEvent, ev.Type)
	}
}

func pointerKind(t protocol.EventType) input.PointerKind {
	switch t {
	case protocol.EventPointerDown:
		return input.Press
	case protocol.EventPointerUp:
		return input.Release
	default:
		return input.Move
	}
}

// TakePatches returns the patches collected since the last call, with
// self-cancelling visibility toggles removed.
func (h *Host) TakePatches() []protocol.Patch {
	p := coalesce(h.pending)
	h.pending = nil
	return p
}

// Close detaches the controller and stops collecting mutations. A drag in
// progress is abandoned where it is.
func (h *Host) Close() {
	h.sub.Close()
	h.unobserve()
	h.tracer.abort("connection closed")
}

func (h *Host) record(m dom.Mutation) {
	p, ok := patchFromMutation(m)
	if !ok {
		h.logger.Warn("mutation on element without id not sent", "kind", m.Kind, "element", m.Target.String())
		return
	}
	h.pending = append(h.pending, p)
}

func (h *Host) activated(dnd.Session) {
	h.activatedAt = h.now()
}

// dropped moves the entity into the drop target and reverts the drag
// styling to the entity's pre-drag inline values.
func (h *Host) dropped(s dnd.Session, target *dom.Element) {
	target.AppendChild(s.Entity)
	s.Entity.SetStyle(dom.StylePosition, s.Restore.Position)
	s.Entity.SetStyle(dom.StyleLeft, s.Restore.Left)
	s.Entity.SetStyle(dom.StyleTop, s.Restore.Top)
	s.Entity.SetStyle(dom.StyleZIndex, s.Restore.ZIndex)
}

func (h *Host) finished(outcome dnd.Outcome, s dnd.Session, target *dom.Element) {
	now := h.now()
	var dur time.Duration
	if s.Active() {
		dur = now.Sub(h.activatedAt)
	}
	h.metrics.drag(outcome, s.Active(), dur)

	if h.journal == nil {
		return
	}
	rec := journal.Record{
		Session:  h.id,
		Outcome:  outcome.String(),
		Source:   s.Source.ID(),
		Press:    s.PressPoint,
		Duration: dur,
		At:       now.UTC(),
	}
	// A session superseded by a new press has no release point.
	if h.last.Kind == input.Release {
		rec.Release = h.last.Page
	}
	if target != nil {
		rec.Target = target.ID()
	}
	h.journal.Append(rec)
}
