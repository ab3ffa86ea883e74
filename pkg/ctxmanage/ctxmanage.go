package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
)

type ctxKey string

// TraceIdKey is where middleware.Logger stores the request's trace id.
const TraceIdKey ctxKey = "TRACE_ID"

const unknownTraceId = "Unknown"

// WithTraceId returns a copy of ctx carrying traceId.
func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, TraceIdKey, traceId)
}

// GetTraceId fetches the trace id from ctx, or "Unknown" when none was set.
func GetTraceId(ctx context.Context) string {
	traceId, ok := ctx.Value(TraceIdKey).(string)
	if !ok || traceId == "" {
		return unknownTraceId
	}
	return traceId
}

func GetTraceIdOfRequest(c *gin.Context) string {
	return GetTraceId(c.Request.Context())
}
