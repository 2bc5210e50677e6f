package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	instrumentationName = "github.com/badgerhoneymoon/retrowave-racer/server"
	serviceName         = "retrowave-server"
)

// Metric exporters accepted by NewMeterProvider
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// NewMeterProvider builds the SDK provider for exporter. "stdout" writes a
// JSON batch to w every interval; "none" keeps the instruments live but
// exports nothing. Callers own Shutdown.
func NewMeterProvider(exporter string, interval time.Duration, w io.Writer) (*sdkmetric.MeterProvider, error) {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	switch exporter {
	case ExporterNone, "":
		return sdkmetric.NewMeterProvider(sdkmetric.WithResource(res)), nil
	case ExporterStdout:
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("creating stdout exporter: %w", err)
		}
		reader := sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))
		return sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		), nil
	default:
		return nil, fmt.Errorf("unknown metrics exporter %q", exporter)
	}
}

// Metrics holds the server's OTel instruments
type Metrics struct {
	ticks         metric.Int64Counter
	tickDuration  metric.Float64Histogram
	snapshotBytes metric.Int64Counter
	sessions      metric.Int64ObservableGauge
}

// NewMetrics creates the instruments on mp. activeSessions is polled for
// the sessions gauge at every collection.
func NewMetrics(mp metric.MeterProvider, activeSessions func() int) (*Metrics, error) {
	m := mp.Meter(instrumentationName)
	var (
		mt  Metrics
		err error
	)

	mt.ticks, err = m.Int64Counter(
		"retro.ticks",
		metric.WithDescription("Simulation ticks run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	mt.tickDuration, err = m.Float64Histogram(
		"retro.tick.duration",
		metric.WithDescription("Wall time of one simulation tick"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick duration histogram: %w", err)
	}

	mt.snapshotBytes, err = m.Int64Counter(
		"retro.snapshot.bytes",
		metric.WithDescription("Bytes of binary state frames sent"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot bytes counter: %w", err)
	}

	mt.sessions, err = m.Int64ObservableGauge(
		"retro.sessions.active",
		metric.WithDescription("Runs currently in progress"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(mt.sessions, int64(activeSessions()))
			return nil
		},
		mt.sessions,
	)
	if err != nil {
		return nil, fmt.Errorf("registering sessions callback: %w", err)
	}

	return &mt, nil
}

// RecordTick counts one tick and its duration. Safe on a nil receiver.
func (m *Metrics) RecordTick(ctx context.Context, d time.Duration, mode string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	m.ticks.Add(ctx, 1, attrs)
	m.tickDuration.Record(ctx, float64(d)/float64(time.Millisecond), attrs)
}

// RecordSnapshot counts the size of one state frame. Safe on a nil receiver.
func (m *Metrics) RecordSnapshot(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.snapshotBytes.Add(ctx, int64(n))
}
