package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicContextKey is the context key under which the *newrelic.Application
// is stored.
type NewRelicContextKey struct{}

// WithApplication injects the application so downstream code can record
// custom metrics and events. A nil application leaves ctx unchanged.
func WithApplication(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey{}, app)
}

// StartTransaction starts a New Relic transaction for a unit of work, such as
// a single CLI command, and attaches it to the returned context. The returned
// func ends the transaction, noticing err if non-nil.
func StartTransaction(ctx context.Context, name string) (context.Context, func(err error)) {
	app := applicationFromContext(ctx)
	if app == nil {
		return ctx, func(error) {}
	}

	txn := app.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), func(err error) {
		if err != nil {
			txn.NoticeError(err)
		}
		txn.End()
	}
}
