// Package context carries request-scoped values used for logging and tracing.
// Authorization never reads from here; services receive an explicit actor.
package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext contains request tracing information.
type TraceContext struct {
	TraceID   string
	RequestID string
}

// RequestUser identifies the caller for log enrichment.
type RequestUser struct {
	ActorID string
	Role    string
}

type (
	traceKey struct{}
	userKey  struct{}
)

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext creates a TraceContext, reusing incoming ids when present.
func NewTraceContext(traceID, requestID string) *TraceContext {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	if traceID == "" {
		traceID = requestID
	}
	return &TraceContext{TraceID: traceID, RequestID: requestID}
}

// WithUser adds RequestUser to context.
func WithUser(ctx context.Context, u *RequestUser) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// GetUser returns RequestUser from context.
func GetUser(ctx context.Context) *RequestUser {
	if v, ok := ctx.Value(userKey{}).(*RequestUser); ok {
		return v
	}
	return nil
}
