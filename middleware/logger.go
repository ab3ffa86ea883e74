package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

const TraceIdHeader = "X-Trace-Id"

// Logger assigns every request a trace id and logs it once the handler chain returns.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := c.GetHeader(TraceIdHeader)
		if traceId == "" {
			traceId = uuid.NewString()
		}
		ctx := ctxmanage.WithTraceId(c.Request.Context(), traceId)
		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceIdHeader, traceId)

		start := time.Now()
		slog.Info("started", slog.String(logkey.TraceID, traceId),
			slog.String("Method", c.Request.Method), slog.Any("URL Path", c.Request.URL.Path))

		c.Next()

		slog.Info("completed", slog.String(logkey.TraceID, traceId),
			slog.String("Method", c.Request.Method), slog.Any("URL Path", c.Request.URL.Path),
			slog.Int("Status Code", c.Writer.Status()),
			slog.Int64("Latency ms", time.Since(start).Milliseconds()))
	}
}
