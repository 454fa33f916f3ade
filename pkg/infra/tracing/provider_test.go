package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	options "github.com/kart-io/naughty-assistant/pkg/options/tracing"
)

func TestNewProviderDisabled(t *testing.T) {
	p, err := NewProvider(context.Background(), options.NewOptions(), "naughty-assistant", "v0.0.0")
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestNewProviderNoopExporter(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	opts := options.NewOptions()
	opts.Enabled = true
	opts.Exporter = options.ExporterNoop

	p, err := NewProvider(context.Background(), opts, "naughty-assistant", "v0.0.0")
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	ctx, span := StartSpan(context.Background(), "model.generate")
	RecordError(ctx, errors.New("boom"))
	span.End()
	assert.Len(t, TraceIDFromContext(ctx), 32)
}

func TestNewProviderRejectsUnknownExporter(t *testing.T) {
	opts := options.NewOptions()
	opts.Enabled = true
	opts.Exporter = "carrier-pigeon"

	_, err := NewProvider(context.Background(), opts, "naughty-assistant", "v0.0.0")
	assert.Error(t, err)
	assert.NotEmpty(t, opts.Validate())
}
