package mq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tuanvumaihuynh/product-discount/pkg/correlationid"
	"github.com/tuanvumaihuynh/product-discount/pkg/ptr"
)

func TestBuildProduceRecord(t *testing.T) {
	rec := buildProduceRecord(ProduceMsg{
		Topic:        "product.created",
		Headers:      map[string]string{correlationid.Header: "c-1"},
		Payload:      []byte(`{"product_id":1}`),
		PartitionKey: ptr.New("1"),
	})

	assert.Equal(t, "product.created", rec.Topic)
	assert.Equal(t, []byte("1"), rec.Key)
	assert.Equal(t, []byte(`{"product_id":1}`), rec.Value)
	assert.Equal(t, []kgo.RecordHeader{{Key: correlationid.Header, Value: []byte("c-1")}}, rec.Headers)

	rec = buildProduceRecord(ProduceMsg{Topic: "product.deleted"})
	assert.Nil(t, rec.Key)
}

func TestHandleRecord(t *testing.T) {
	newConsumer := func(h HandlerFunc) *KafkaConsumer {
		return &KafkaConsumer{
			handlers: map[string]HandlerFunc{"product.created": h},
			log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
	}

	t.Run("Should pass correlation id from headers", func(t *testing.T) {
		var got string
		c := newConsumer(func(ctx context.Context, _ string, _ []byte) error {
			got, _ = correlationid.FromContext(ctx)
			return nil
		})

		c.handleRecord(context.Background(), &kgo.Record{
			Topic:   "product.created",
			Headers: []kgo.RecordHeader{{Key: correlationid.Header, Value: []byte("c-9")}},
		})

		assert.Equal(t, "c-9", got)
	})

	t.Run("Should survive handler errors and panics", func(t *testing.T) {
		c := newConsumer(func(context.Context, string, []byte) error {
			return errors.New("boom")
		})
		assert.NotPanics(t, func() {
			c.handleRecord(context.Background(), &kgo.Record{Topic: "product.created"})
		})

		c = newConsumer(func(context.Context, string, []byte) error {
			panic("boom")
		})
		assert.NotPanics(t, func() {
			c.handleRecord(context.Background(), &kgo.Record{Topic: "product.created"})
		})
	})

	t.Run("Should ignore unknown topics", func(t *testing.T) {
		called := false
		c := newConsumer(func(context.Context, string, []byte) error {
			called = true
			return nil
		})

		c.handleRecord(context.Background(), &kgo.Record{Topic: "other"})

		assert.False(t, called)
	})
}
