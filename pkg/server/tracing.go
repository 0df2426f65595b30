package server

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/dragdrop/pkg/dnd"
	"github.com/vango-dev/dragdrop/pkg/dom"
)

const (
	tracerName   = "github.com/vango-dev/dragdrop/pkg/server"
	dragSpanName = "dnd.drag"
)

// dragTracer is a dnd.Observer that records one span per activated drag.
type dragTracer struct {
	ctx     context.Context
	tracer  trace.Tracer
	session string
	span    trace.Span
}

func (t *dragTracer) Activated(s dnd.Session) {
	_, t.span = t.tracer.Start(t.ctx, dragSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("dragd.session_id", t.session),
			attribute.String("dragd.source_id", s.Source.ID()),
			attribute.Float64("dragd.press_x", s.PressPoint.X),
			attribute.Float64("dragd.press_y", s.PressPoint.Y),
		),
	)
}

func (t *dragTracer) Finished(outcome dnd.Outcome, _ dnd.Session, target *dom.Element) {
	if t.span == nil {
		return
	}
	span := t.span
	t.span = nil

	span.SetAttributes(attribute.String("dragd.outcome", outcome.String()))
	if target != nil {
		span.SetAttributes(attribute.String("dragd.target_id", target.ID()))
	}
	span.SetStatus(codes.Ok, "")
	span.End()
}

// abort ends a span left open by a connection that closed mid-drag.
func (t *dragTracer) abort(reason string) {
	if t.span == nil {
		return
	}
	t.span.SetStatus(codes.Error, reason)
	t.span.End()
	t.span = nil
}
