package store

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/shopcart/internal/model"
)

// CartMetrics exports cart size and operation counts to Prometheus.
type CartMetrics struct {
	lineItems     prometheus.Gauge
	totalQuantity prometheus.Gauge
	operations    *prometheus.CounterVec
}

// NewCartMetrics registers the cart collectors with reg.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	factory := promauto.With(reg)

	return &CartMetrics{
		lineItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cart_line_items",
			Help: "Number of distinct line items in the cart",
		}),
		totalQuantity: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cart_total_quantity",
			Help: "Sum of quantities across all cart line items",
		}),
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_operations_total",
				Help: "Total number of cart operations",
			},
			[]string{"operation", "changed"},
		),
	}
}

// Observe records ev. It is an Observer.
func (m *CartMetrics) Observe(ev Event) {
	m.operations.WithLabelValues(string(ev.Operation), strconv.FormatBool(ev.Changed)).Inc()
	m.SetContents(ev.Items)
}

// SetContents sets the size gauges from items without counting an operation.
func (m *CartMetrics) SetContents(items []model.CartLineItem) {
	total := 0
	for i := range items {
		total += items[i].Quantity
	}
	m.lineItems.Set(float64(len(items)))
	m.totalQuantity.Set(float64(total))
}
