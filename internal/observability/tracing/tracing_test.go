package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false, Endpoint: "collector:4317"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, otel.GetTextMapPropagator())
}

func TestSetup_EmptyEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: true})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
