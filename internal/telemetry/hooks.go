package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const hookScopeName = "github.com/cometalabs/devflow/hooks"

// hookMetrics holds lazily-initialized instruments for hook dispatch.
var hookMetrics struct {
	dispatches metric.Int64Counter
	duration   metric.Float64Histogram
	errors     metric.Int64Counter
}

var hookMetricsOnce sync.Once

func initHookMetrics() {
	m := Meter(hookScopeName)
	hookMetrics.dispatches, _ = m.Int64Counter("devflow.hook.dispatches",
		metric.WithDescription("Hook events dispatched, by event type and decision"),
	)
	hookMetrics.duration, _ = m.Float64Histogram("devflow.hook.dispatch.duration",
		metric.WithDescription("Hook dispatch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	hookMetrics.errors, _ = m.Int64Counter("devflow.hook.errors",
		metric.WithDescription("Hook dispatch failures"),
	)
}

// RecordHookDispatch counts one hook dispatch with its outcome. Safe to
// call when telemetry is disabled; the no-op provider absorbs it.
func RecordHookDispatch(ctx context.Context, eventType, decision string, d time.Duration, err error) {
	hookMetricsOnce.Do(initHookMetrics)

	attrs := metric.WithAttributes(
		attribute.String("devflow.hook.event", eventType),
		attribute.String("devflow.hook.decision", decision),
	)
	hookMetrics.dispatches.Add(ctx, 1, attrs)
	hookMetrics.duration.Record(ctx, float64(d.Milliseconds()), attrs)
	if err != nil {
		hookMetrics.errors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("devflow.hook.event", eventType)))
	}
}
