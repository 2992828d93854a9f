package metrics

import (
	"context"
)

// RecordEvent records a custom event. Attribute values must be strings,
// numbers or booleans.
func RecordEvent(ctx context.Context, eventName string, attributes map[string]interface{}) {
	if app := applicationFromContext(ctx); app != nil {
		app.RecordCustomEvent(eventName, attributes)
	}
}
