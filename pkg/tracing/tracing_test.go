package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(ServiceInfo{Name: "explorepe-api"}, "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_NoTracer(t *testing.T) {
	ctx := context.Background()
	spanCtx, span := StartSpan(ctx, "reviews.create")
	assert.Equal(t, ctx, spanCtx)
	assert.False(t, span.SpanContext().IsValid())

	assert.NotPanics(t, func() { EndSpan(span, errors.New("boom")) })
}
