// Package metrics provides Prometheus metrics for the steamwatch watch loop.
// Scrape these at /metrics while `steamwatch watch` runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Refresh trigger
	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steamwatch_refreshes_total",
			Help: "Price refresh runs by result",
		},
		[]string{"result"}, // "ok" or "failed"
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "steamwatch_refresh_duration_seconds",
			Help:    "Latency of the remote refresh trigger",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	PricesUpdatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "steamwatch_prices_updated_total",
			Help: "Tracked item prices updated by the refresh trigger",
		},
	)

	PriceDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "steamwatch_price_drops_total",
			Help: "Items reported at or below their target price",
		},
	)

	PurchasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "steamwatch_purchases_total",
			Help: "Items bought by auto-purchase",
		},
	)

	ItemErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "steamwatch_item_errors_total",
			Help: "Per-item failures reported by the refresh trigger",
		},
	)

	// Tracked items
	TrackedItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "steamwatch_tracked_items",
			Help: "Tracked items by status",
		},
		[]string{"status"},
	)

	TargetsReached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "steamwatch_targets_reached",
			Help: "Active items whose current price is at or below target",
		},
	)
)

// Observer feeds session events into the package metrics.
type Observer struct{}

// ObserveRefresh records one run of the refresh trigger.
func (Observer) ObserveRefresh(report *models.RefreshReport, err error, took time.Duration) {
	RefreshDuration.Observe(took.Seconds())
	if err != nil || report == nil {
		RefreshesTotal.WithLabelValues("failed").Inc()
		return
	}

	RefreshesTotal.WithLabelValues("ok").Inc()
	PricesUpdatedTotal.Add(float64(report.Updated))
	PriceDropsTotal.Add(float64(len(report.PriceDrops)))
	PurchasesTotal.Add(float64(len(report.PurchasesMade)))
	ItemErrorsTotal.Add(float64(len(report.Errors)))
}

// ObserveTracks sets the tracked item gauges from a freshly loaded list.
func (Observer) ObserveTracks(tracks []models.TrackedItem) {
	var active, purchased, reached int
	for _, t := range tracks {
		switch t.Status {
		case models.StatusPurchased:
			purchased++
		default:
			active++
			if t.TargetReached() {
				reached++
			}
		}
	}

	TrackedItems.WithLabelValues(string(models.StatusActive)).Set(float64(active))
	TrackedItems.WithLabelValues(string(models.StatusPurchased)).Set(float64(purchased))
	TargetsReached.Set(float64(reached))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
