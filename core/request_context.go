package core

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RequestContext carries per-request observability state: a trace id generated
// at request entry and a last-tool-used marker written by tool invocations
// during the request. It is 1:1 with one inbound chat request and must never
// be shared between requests; concurrent tool executions within a single
// request are the only writers it has to tolerate.
type RequestContext struct {
	traceID string

	mu       sync.Mutex
	toolUsed string
}

// NewRequestContext creates a fresh context with a generated trace id and a
// cleared tool marker.
func NewRequestContext() *RequestContext {
	return &RequestContext{traceID: uuid.NewString()}
}

// TraceID returns the correlation identifier for this request.
func (rc *RequestContext) TraceID() string { return rc.traceID }

// MarkTool records the name of a tool that fired during this request.
// Last write wins within a turn.
func (rc *RequestContext) MarkTool(name string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.toolUsed = name
}

// ToolUsed returns the last tool marked during this request, if any.
func (rc *RequestContext) ToolUsed() (string, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.toolUsed, rc.toolUsed != ""
}

type requestContextKey struct{}

// WithRequestContext attaches rc to ctx so that tool implementations deep in
// the call graph can mark usage without threading rc through every signature.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom extracts the request context from ctx.
func RequestContextFrom(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc, ok
}

// MarkTool marks tool usage on the request context carried by ctx. It is a
// no-op when no request context is attached (e.g. in unit tests that invoke
// tools directly).
func MarkTool(ctx context.Context, name string) {
	if rc, ok := RequestContextFrom(ctx); ok {
		rc.MarkTool(name)
	}
}
