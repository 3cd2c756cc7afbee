package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HTTPMetrics receives per-request measurements.
type HTTPMetrics interface {
	ActiveRequestsInc()
	ActiveRequestsDec()
	ObserveRequest(path, method string, status int, duration time.Duration)
}

// ObservabilityMiddleware returns a Gin middleware that integrates Prometheus metrics and OpenTelemetry tracing.
// For each HTTP request, it continues any propagated trace, starts a server span and records request metrics
// labelled with the route template, method and status code.
// ObservabilityMiddleware 返回一个集成了 Prometheus 指标和 OpenTelemetry 跟踪的 Gin 中间件。
// 对于每个 HTTP 请求，它会延续传入的追踪上下文，启动服务端 Span，并按路由模板、方法和状态码记录指标。
func ObservabilityMiddleware(tracer trace.Tracer, metrics HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.ActiveRequestsInc()
		defer metrics.ActiveRequestsDec()

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		// Use the route template (e.g. "/students/chat/history/:studentId") for low-cardinality labels.
		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}
		status := c.Writer.Status()
		metrics.ObserveRequest(path, c.Request.Method, status, time.Since(start))

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", path),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
