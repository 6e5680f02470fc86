package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// restoreGlobals puts back the OpenTelemetry globals Setup replaces.
func restoreGlobals(t *testing.T) {
	t.Helper()
	tp, mp, lp := otel.GetTracerProvider(), otel.GetMeterProvider(), global.GetLoggerProvider()
	prop := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
		global.SetLoggerProvider(lp)
		otel.SetTextMapPropagator(prop)
	})
}

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), Settings{ServiceName: "proptax", MetricsEnabled: true, LogsEnabled: true}, nil)
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.False(t, p.MetricsEnabled())
	assert.False(t, p.LogsEnabled())
	assert.NotNil(t, p.Meter("ledger"))

	base := zap.NewExample()
	assert.Same(t, base, p.Logger(base))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_AllSignals(t *testing.T) {
	restoreGlobals(t)

	// the gRPC exporters dial lazily, so no collector is needed
	p, err := Setup(context.Background(), Settings{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		Insecure:          true,
		ServiceName:       "proptax-test",
		ServiceVersion:    "9.9.9",
		SamplingRatio:     1.0,
		MetricsEnabled:    true,
		ExportInterval:    time.Hour,
		LogsEnabled:       true,
		LogLevel:          zapcore.WarnLevel,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	})

	assert.True(t, p.TracingEnabled())
	assert.True(t, p.MetricsEnabled())
	assert.True(t, p.LogsEnabled())

	_, span := otel.Tracer("test").Start(context.Background(), "probe")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	_, err = NewLedgerMetrics(p.Meter("ledger"))
	assert.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	p.Logger(zap.New(core)).Info("still reaches the base core")
	assert.Equal(t, 1, logs.Len())
}

func TestSetup_TracesOnly(t *testing.T) {
	restoreGlobals(t)

	p, err := Setup(context.Background(), Settings{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		Insecure:          true,
		ServiceName:       "proptax-test",
		SamplingRatio:     0.5,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	assert.True(t, p.TracingEnabled())
	assert.False(t, p.MetricsEnabled())
	assert.False(t, p.LogsEnabled())
}

func TestNilProvidersHaveNoLogs(t *testing.T) {
	var p *Providers
	assert.False(t, p.LogsEnabled())
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1.0, sdktrace.AlwaysSample().Description()},
		{1.5, sdktrace.AlwaysSample().Description()},
		{0.0, sdktrace.NeverSample().Description()},
		{0.25, sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, samplerFor(tt.ratio).Description(), "ratio %v", tt.ratio)
	}
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	logger := zap.New(core.With([]zapcore.Field{zap.String("component", "ledger")}))
	logger.Info("dropped")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "ledger", entry.ContextMap()["component"])
}
