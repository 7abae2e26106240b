package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/product-discount/internal/config"
	"github.com/tuanvumaihuynh/product-discount/internal/telemetry"
)

func TestInitTracerWithoutCollector(t *testing.T) {
	cleanup, err := telemetry.InitTracer(context.Background(), config.Otel{})
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
	assert.NoError(t, cleanup(context.Background()))
}
