package database

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/caffeinepub/saree-catalogue-portal/pkg/logger"
)

const tracerName = "github.com/caffeinepub/saree-catalogue-portal/pkg/database"

// WeaverIDKey is the span attribute naming the catalog a query touches.
const WeaverIDKey = attribute.Key("catalog.weaver_id")

// Query describes one repository statement.
type Query struct {
	Op        string
	Statement string
	// Weaver is the catalog owner the statement is scoped to. When empty the
	// authenticated weaver on the context is used, if any.
	Weaver string
}

func (q Query) weaver(ctx context.Context) string {
	if q.Weaver != "" {
		return q.Weaver
	}
	return logger.WeaverIDFromContext(ctx)
}

type slowQuery struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slowQueries atomic.Pointer[slowQuery]

// SetSlowQueryLogging warns about statements that take at least threshold.
// A zero threshold or nil logger turns it off.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	if threshold <= 0 || logger == nil {
		slowQueries.Store(nil)
		return
	}
	slowQueries.Store(&slowQuery{threshold: threshold, logger: logger})
}

// TraceQuery starts a client span for q. Call the returned function with the
// statement's error once it completes:
//
//	ctx, end := database.TraceQuery(ctx, database.Query{Op: "ListProducts", Statement: query, Weaver: owner})
//	defer func() { end(err) }()
func TraceQuery(ctx context.Context, q Query) (context.Context, func(error)) {
	start := time.Now()
	weaver := q.weaver(ctx)

	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", q.Op),
		attribute.String("db.statement", q.Statement),
	}
	if weaver != "" {
		attrs = append(attrs, WeaverIDKey.String(weaver))
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+q.Op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		cfg := slowQueries.Load()
		if cfg == nil {
			return
		}
		elapsed := time.Since(start)
		if elapsed < cfg.threshold {
			return
		}
		fields := []any{
			slog.String("operation", q.Op),
			slog.String("statement", q.Statement),
			slog.Duration("duration", elapsed),
		}
		if weaver != "" {
			fields = append(fields, slog.String("weaver_id", weaver))
		}
		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
		}
		cfg.logger.WarnContext(ctx, "slow query detected", fields...)
	}
}
