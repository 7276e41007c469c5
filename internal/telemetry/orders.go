package telemetry

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OrderMetrics records order workflow outcomes. A nil *OrderMetrics is valid
// and records nothing.
type OrderMetrics struct {
	placed    metric.Int64Counter
	rejected  metric.Int64Counter
	cancelled metric.Int64Counter
	units     metric.Int64Counter
	value     metric.Float64Histogram
}

func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	placed, err := meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders committed with their stock decremented."))
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("storefront.orders.rejected",
		metric.WithDescription("Order attempts rolled back, by reason."))
	if err != nil {
		return nil, err
	}

	cancelled, err := meter.Int64Counter("storefront.orders.cancelled",
		metric.WithDescription("Orders moved to CANCELLED."))
	if err != nil {
		return nil, err
	}

	units, err := meter.Int64Counter("storefront.inventory.units_decremented",
		metric.WithDescription("Stock units removed by placed orders."))
	if err != nil {
		return nil, err
	}

	value, err := meter.Float64Histogram("storefront.orders.value",
		metric.WithDescription("Total amount of placed orders."))
	if err != nil {
		return nil, err
	}

	return &OrderMetrics{
		placed:    placed,
		rejected:  rejected,
		cancelled: cancelled,
		units:     units,
		value:     value,
	}, nil
}

func (m *OrderMetrics) OrderPlaced(ctx context.Context, storeID int64, units int, total float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("store_id", strconv.FormatInt(storeID, 10)))
	m.placed.Add(ctx, 1, attrs)
	m.units.Add(ctx, int64(units), attrs)
	m.value.Record(ctx, total, attrs)
}

func (m *OrderMetrics) OrderRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *OrderMetrics) OrderCancelled(ctx context.Context) {
	if m == nil {
		return
	}
	m.cancelled.Add(ctx, 1)
}
