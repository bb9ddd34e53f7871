// Package otelsink adapts ordr's EventSink to OpenTelemetry tracing: one
// span per job run, with a child span per node dispatch, attributes set
// up front, retries recorded as span events, and status set when the span
// ends.
package otelsink

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ordr-dev/ordr"
)

// Sink is an ordr.EventSink backed by an OpenTelemetry tracer. Construct one
// per Graph.Execute call with New; it is not safe to reuse across runs
// because it owns one job-level span.
//
// Emit is never called concurrently by the executor (see EventSink's
// doc comment), so Sink keeps no locks around its span map.
type Sink struct {
	tracer  trace.Tracer
	ctx     context.Context
	jobSpan trace.Span
	nodes   map[string]trace.Span
}

// New starts the job-level span and returns a Sink ready to pass to
// ordr.WithEventSink. tracerName identifies the instrumentation scope
// passed to otel.Tracer.
func New(ctx context.Context, tracerName string) *Sink {
	tracer := otel.Tracer(tracerName)
	spanCtx, span := tracer.Start(ctx, "ordr.Job")
	return &Sink{
		tracer:  tracer,
		ctx:     spanCtx,
		jobSpan: span,
		nodes:   make(map[string]trace.Span),
	}
}

// Emit implements ordr.EventSink.
func (s *Sink) Emit(e ordr.Event) {
	switch e.Kind {
	case ordr.EventNodeStart:
		_, span := s.tracer.Start(s.ctx, "ordr.Node/"+e.NodeName,
			trace.WithAttributes(attribute.String("ordr.node", e.NodeName), attribute.Int("ordr.retry", e.Retry)))
		s.nodes[e.NodeName] = span

	case ordr.EventNodeRetrying:
		if span, ok := s.nodes[e.NodeName]; ok {
			span.AddEvent("ordr.node.retrying", trace.WithAttributes(attribute.Int("ordr.retry", e.Retry)))
		}

	case ordr.EventNodeDone:
		s.endNode(e.NodeName, codes.Ok, "")

	case ordr.EventNodeFailed:
		s.endNode(e.NodeName, codes.Error, "node failed")
		s.jobSpan.SetStatus(codes.Error, "node failed")
		s.jobSpan.End()

	case ordr.EventNodePanic:
		s.endNode(e.NodeName, codes.Error, "node panicked")
		s.jobSpan.SetStatus(codes.Error, "node panicked")
		s.jobSpan.End()

	case ordr.EventJobDone:
		s.jobSpan.SetStatus(codes.Ok, "")
		s.jobSpan.End()

	case ordr.EventJobCancelled:
		s.jobSpan.SetStatus(codes.Error, "job cancelled")
		s.jobSpan.End()
	}
}

func (s *Sink) endNode(name string, status codes.Code, description string) {
	span, ok := s.nodes[name]
	if !ok {
		return
	}
	delete(s.nodes, name)
	span.SetStatus(status, description)
	span.End()
}
