package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestMetricsRecordTicks(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	sm := NewSessionManager(testGameConfig, 10, nil, zerolog.Nop())
	m, err := NewMetrics(mp, sm.Count)
	require.NoError(t, err)
	sm.SetMetrics(m)

	sess := sm.CreateSession(sim.ModeClassic)
	require.NotNil(t, sess)
	desktop := &mockBroadcaster{}
	sess.Game.desktop = desktop
	sess.Game.update()
	sess.Game.update()
	require.Equal(t, 1, desktop.frames())

	got := collect(t, reader)

	ticks, ok := got["retro.ticks"].(metricdata.Sum[int64])
	require.True(t, ok, "retro.ticks missing")
	require.Len(t, ticks.DataPoints, 1)
	assert.Equal(t, int64(2), ticks.DataPoints[0].Value)
	mode, ok := ticks.DataPoints[0].Attributes.Value("mode")
	require.True(t, ok)
	assert.Equal(t, "classic", mode.AsString())

	active, ok := got["retro.sessions.active"].(metricdata.Gauge[int64])
	require.True(t, ok, "retro.sessions.active missing")
	require.Len(t, active.DataPoints, 1)
	assert.Equal(t, int64(1), active.DataPoints[0].Value)

	dur, ok := got["retro.tick.duration"].(metricdata.Histogram[float64])
	require.True(t, ok, "retro.tick.duration missing")
	require.Len(t, dur.DataPoints, 1)
	assert.Equal(t, uint64(2), dur.DataPoints[0].Count)

	sent, ok := got["retro.snapshot.bytes"].(metricdata.Sum[int64])
	require.True(t, ok, "retro.snapshot.bytes missing")
	require.Len(t, sent.DataPoints, 1)
	assert.Positive(t, sent.DataPoints[0].Value)

	// the gauge follows the manager
	sm.EndSession(sess.ID)
	active = collect(t, reader)["retro.sessions.active"].(metricdata.Gauge[int64])
	require.Len(t, active.DataPoints, 1)
	assert.Zero(t, active.DataPoints[0].Value)
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTick(t.Context(), time.Millisecond, "arcade")
		m.RecordSnapshot(t.Context(), 10)
	})
}

func TestNewMeterProvider(t *testing.T) {
	var buf bytes.Buffer
	mp, err := NewMeterProvider(ExporterStdout, time.Hour, &buf)
	require.NoError(t, err)

	m, err := NewMetrics(mp, func() int { return 3 })
	require.NoError(t, err)
	m.RecordTick(t.Context(), time.Millisecond, "arcade")

	// shutdown flushes the periodic reader
	require.NoError(t, mp.Shutdown(t.Context()))
	assert.Contains(t, buf.String(), "retro.ticks")
	assert.Contains(t, buf.String(), "retro.sessions.active")
	assert.Contains(t, buf.String(), serviceName)

	mp, err = NewMeterProvider(ExporterNone, time.Hour, &buf)
	require.NoError(t, err)
	require.NoError(t, mp.Shutdown(t.Context()))

	_, err = NewMeterProvider("statsd", time.Hour, &buf)
	assert.Error(t, err)
}
