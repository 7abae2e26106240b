package outbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/product-discount/pkg/correlationid"
	"github.com/tuanvumaihuynh/product-discount/pkg/outbox"
)

func TestHeadersRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
	ctx = correlationid.NewContext(ctx, "corr-1")

	headers := outbox.BuildHeaders(ctx)
	assert.Equal(t, "corr-1", headers[correlationid.Header])
	assert.Contains(t, headers, "traceparent")

	out := outbox.ExtractContextFromHeaders(context.Background(), headers)

	id, ok := correlationid.FromContext(out)
	assert.True(t, ok)
	assert.Equal(t, "corr-1", id)
	assert.Equal(t, spanCtx.TraceID(), trace.SpanContextFromContext(out).TraceID())
}

func TestHeadersFromRecord(t *testing.T) {
	rec := &kgo.Record{Headers: []kgo.RecordHeader{
		{Key: correlationid.Header, Value: []byte("a")},
		{Key: "traceparent", Value: []byte("b")},
	}}

	assert.Equal(t, map[string]string{
		correlationid.Header: "a",
		"traceparent":        "b",
	}, outbox.HeadersFromRecord(rec))
}
