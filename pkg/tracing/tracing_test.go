package tracing

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/Retail-Checkout-System/pkg/logging"
)

func TestInit_WithoutEndpointPropagates(t *testing.T) {
	ctx := context.Background()
	tp, err := Init(ctx, "test", "", logging.Discard())
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(ctx) }()

	spanCtx, span := otel.Tracer("test").Start(ctx, "op")
	defer span.End()

	tpHeader := Traceparent(spanCtx)
	require.NotEmpty(t, tpHeader)

	headers := InjectKafkaHeaders(spanCtx, []kafka.Header{{Key: "event_type", Value: []byte("x")}})
	extracted := ExtractKafkaHeaders(ctx, headers)

	got := trace.SpanContextFromContext(extracted)
	assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())
	assert.True(t, got.IsRemote())
}
