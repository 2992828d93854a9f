package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNoApplication(t *testing.T) {
	ctx := WithApplication(context.Background(), nil)
	assert.Nil(t, ctx.Value(NewRelicContextKey{}))

	// Everything is a no-op without an application or transaction
	RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})
	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)

	txnCtx, end := StartTransaction(ctx, "command")
	assert.Equal(t, ctx, txnCtx)
	end(errors.New("failure"))

	tracer := TraceMethodCall(ctx, "dex", "PlaceOrder")
	assert.Nil(t, tracer)
	tracer.AddAttribute("market", "abc")
	tracer.AddAttributes(map[string]interface{}{"side": "bid"})
	tracer.OnError(errors.New("failure"))
	tracer.End()
}

func TestRemoteMessage(t *testing.T) {
	entry := logrus.NewEntry(logrus.StandardLogger())
	entry.Message = "transaction rejected"
	assert.Equal(t, "transaction rejected", remoteMessage(entry))

	entry = entry.WithFields(logrus.Fields{
		"operation": "place_order",
		"attempt":   2,
	}).WithError(errors.New("custom program error: 0x1776"))
	entry.Message = "transaction rejected"

	assert.Equal(
		t,
		`message="transaction rejected", error="custom program error: 0x1776", data={"attempt":2,"operation":"place_order"}`,
		remoteMessage(entry),
	)
}
