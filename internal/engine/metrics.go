package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/coachpo/quoter/internal/schema"
)

const meterName = "github.com/coachpo/quoter/internal/engine"

type engineMetrics struct {
	ordersEmitted metric.Int64Counter
	skipped       metric.Int64Counter
	tickDuration  metric.Float64Histogram
}

func newEngineMetrics(mp metric.MeterProvider) *engineMetrics {
	meter := mp.Meter(meterName)
	m := &engineMetrics{
		ordersEmitted: nil,
		skipped:       nil,
		tickDuration:  nil,
	}
	if counter, err := meter.Int64Counter("quoter.orders.emitted",
		metric.WithDescription("Orders emitted after position-limit checks"),
		metric.WithUnit("{order}")); err == nil {
		m.ordersEmitted = counter
	}
	if counter, err := meter.Int64Counter("quoter.instruments.skipped",
		metric.WithDescription("Configured instruments that produced no view on a tick"),
		metric.WithUnit("{instrument}")); err == nil {
		m.skipped = counter
	}
	if histogram, err := meter.Float64Histogram("quoter.tick.duration",
		metric.WithDescription("Time spent deciding one tick"),
		metric.WithUnit("ms")); err == nil {
		m.tickDuration = histogram
	}
	return m
}

func (m *engineMetrics) recordOrder(ctx context.Context, order schema.Order) {
	if m == nil || m.ordersEmitted == nil {
		return
	}
	m.ordersEmitted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("instrument", order.Symbol),
		attribute.String("side", string(order.Side())),
	))
}

func (m *engineMetrics) recordSkip(ctx context.Context, symbol, reason string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("instrument", symbol),
		attribute.String("reason", reason),
	))
}

func (m *engineMetrics) recordTick(ctx context.Context, started time.Time) {
	if m == nil || m.tickDuration == nil {
		return
	}
	m.tickDuration.Record(ctx, float64(time.Since(started).Microseconds())/1000)
}
