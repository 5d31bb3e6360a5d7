package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_NoneIsNoop(t *testing.T) {
	tp, shutdown, err := Init(context.Background(), Config{Exporter: ExporterNone})
	require.NoError(t, err)
	_, span := tp.Tracer("test").Start(context.Background(), "unused")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	_, _, err := Init(context.Background(), Config{Exporter: "zipkin"})
	assert.ErrorContains(t, err, `unknown trace exporter "zipkin"`)
}

func TestNewProvider_RecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := NewProvider(sdktrace.WithSpanProcessor(rec))

	_, span := tp.Tracer("test").Start(context.Background(), "work")
	span.End()

	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "work", rec.Ended()[0].Name())
	assert.NoError(t, tp.Shutdown(context.Background()))
}
