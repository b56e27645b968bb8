package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchaseAttempts 購買交易結果統計；failure reason 用 error 分類
	PurchaseAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_attempts_total",
			Help: "Purchase workflow outcomes",
		},
		[]string{"result"},
	)

	PurchaseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "purchase_duration_seconds",
			Help:    "Duration of the purchase transaction",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	InventoryAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_adjustments_total",
			Help: "Inventory adjustments by source",
		},
		[]string{"source"},
	)

	TicketDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_deliveries_total",
			Help: "Post-commit ticket delivery outcomes",
		},
		[]string{"result"},
	)

	SeatHoldOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_hold_operations_total",
			Help: "Advisory seat hold operations",
		},
		[]string{"operation", "status"},
	)
)
