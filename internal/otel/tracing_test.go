package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", sampler("always_on", "").Description())
	assert.Equal(t, "AlwaysOffSampler", sampler("always_off", "").Description())
	assert.Equal(t, "TraceIDRatioBased{0.25}", sampler("traceidratio", "0.25").Description())
	assert.Contains(t, sampler("parentbased_traceidratio", "nope").Description(), "root:AlwaysOnSampler")
	assert.Contains(t, sampler("", "").Description(), "ParentBased{root:AlwaysOnSampler")
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.5, ratio("0.5"))
	assert.Equal(t, 1.0, ratio("2"))
	assert.Equal(t, 1.0, ratio(""))
}

func TestInit_Disabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")

	shutdown, err := Init(context.Background(), "skinly-test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")

	shutdown, err := Init(context.Background(), "skinly-test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
