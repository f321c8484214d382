package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_orders_processed_total",
			Help: "Total order lifecycle operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	insufficientStockRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_insufficient_stock_total",
			Help: "Order creations rejected for insufficient stock",
		},
	)

	stockClamps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_stock_clamp_total",
			Help: "Ledger mutations clamped at zero, indicating reconciliation drift",
		},
		[]string{"operation"},
	)

	missingLedgerOnSettle = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_bonus_ledger_missing_total",
			Help: "Bonus settlements skipped because no ledger record exists",
		},
	)
)
