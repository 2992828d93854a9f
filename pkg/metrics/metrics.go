package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

func applicationFromContext(ctx context.Context) *newrelic.Application {
	app, _ := ctx.Value(NewRelicContextKey{}).(*newrelic.Application)
	return app
}

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if app := applicationFromContext(ctx); app != nil {
		app.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric in milliseconds
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if app := applicationFromContext(ctx); app != nil {
		app.RecordCustomMetric(metricName, float64(duration.Milliseconds()))
	}
}
