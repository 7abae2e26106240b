package mq

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/storage/mq")

// kafkaHooks returns the kotel client hooks. They are built per client so
// they pick up the tracer provider and propagator installed at startup.
func kafkaHooks() kgo.Opt {
	kTracer := kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
		kotel.TracerPropagator(otel.GetTextMapPropagator()),
	)
	return kgo.WithHooks(kotel.NewKotel(kotel.WithTracer(kTracer)).Hooks()...)
}
