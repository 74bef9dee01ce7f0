package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/kbukum/shellwrap/logger"
)

// newMeterProvider pushes metrics to the OTLP/HTTP collector at
// cfg.Endpoint every cfg.Interval.
func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	), nil
}

// ProcessMetrics holds the instruments recorded around child processes.
type ProcessMetrics struct {
	started     metric.Int64Counter
	running     metric.Int64UpDownCounter
	exits       metric.Int64Counter
	duration    metric.Float64Histogram
	timeouts    metric.Int64Counter
	spawnErrors metric.Int64Counter
}

// NewProcessMetrics creates process instruments on the given meter.
func NewProcessMetrics(meter metric.Meter) (*ProcessMetrics, error) {
	started, err := meter.Int64Counter("process.started",
		metric.WithDescription("Number of child processes spawned"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.started counter: %w", err)
	}

	running, err := meter.Int64UpDownCounter("process.running",
		metric.WithDescription("Number of child processes currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.running gauge: %w", err)
	}

	exits, err := meter.Int64Counter("process.exits",
		metric.WithDescription("Child process exits by binary and exit code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.exits counter: %w", err)
	}

	duration, err := meter.Float64Histogram("process.duration",
		metric.WithDescription("Wall time of child processes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.duration histogram: %w", err)
	}

	timeouts, err := meter.Int64Counter("process.timeouts",
		metric.WithDescription("Child processes terminated by a watchdog"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.timeouts counter: %w", err)
	}

	spawnErrors, err := meter.Int64Counter("process.spawn_errors",
		metric.WithDescription("Child processes that failed to start"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.spawn_errors counter: %w", err)
	}

	return &ProcessMetrics{
		started:     started,
		running:     running,
		exits:       exits,
		duration:    duration,
		timeouts:    timeouts,
		spawnErrors: spawnErrors,
	}, nil
}

// RecordStart counts a spawned process and marks it running.
func (m *ProcessMetrics) RecordStart(ctx context.Context, binary string) {
	attrs := metric.WithAttributes(attribute.String(AttrProcessBinary, binary))
	m.started.Add(ctx, 1, attrs)
	m.running.Add(ctx, 1, attrs)
}

// RecordExit records a finished process.
func (m *ProcessMetrics) RecordExit(ctx context.Context, binary string, exitCode int, d time.Duration) {
	m.running.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrProcessBinary, binary)))
	m.exits.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrProcessBinary, binary),
		attribute.String(AttrProcessExitCode, strconv.Itoa(exitCode)),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrProcessBinary, binary),
	))
}

// RecordTimeout counts a watchdog termination.
func (m *ProcessMetrics) RecordTimeout(ctx context.Context, binary string) {
	m.timeouts.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrProcessBinary, binary)))
}

// RecordSpawnError counts a process that could not be started.
func (m *ProcessMetrics) RecordSpawnError(ctx context.Context, binary string) {
	m.spawnErrors.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrProcessBinary, binary)))
}

var (
	processMetricsOnce sync.Once
	processMetrics     *ProcessMetrics
)

// Processes returns the process instruments bound to the global meter
// provider. Instruments created before Setup follow the provider once it is
// installed.
func Processes() *ProcessMetrics {
	processMetricsOnce.Do(func() {
		m, err := NewProcessMetrics(otel.Meter(instrumentationName))
		if err != nil {
			logger.Warn("process metrics unavailable", logger.Fields(logger.FieldError, err.Error()))
			m, _ = NewProcessMetrics(noop.NewMeterProvider().Meter(instrumentationName))
		}
		processMetrics = m
	})
	return processMetrics
}
