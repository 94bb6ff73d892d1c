package metrics

import (
	"context"
	"time"

	"github.com/andrescamacho/garmentflow/internal/application/mediator"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// PrometheusMiddleware creates a middleware that records command execution metrics
//
// This middleware wraps all command/query execution and records:
// - Execution duration (histogram)
// - Success/failure counts (counter)
// - Rejections by domain error code (counter)
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		// Skip metrics if collector is nil (metrics disabled)
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)

		collector.RecordCommandExecution(
			mediator.RequestName(request),
			time.Since(start).Seconds(),
			err == nil,
			string(shared.CodeOf(err)),
		)

		return response, err
	}
}
