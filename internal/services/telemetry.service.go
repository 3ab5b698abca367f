package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "latencyviz_ticks_total",
		Help: "Simulation ticks that produced a snapshot",
	})

	ticksSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "latencyviz_ticks_skipped_total",
		Help: "Simulation ticks skipped because no nodes were loaded",
	})

	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "latencyviz_tick_duration_seconds",
		Help:    "Time spent generating and committing one tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	snapshotSamples = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "latencyviz_snapshot_samples",
		Help: "Samples in the current snapshot",
	})

	historySeries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "latencyviz_history_series",
		Help: "Pair series tracked in history",
	})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "latencyviz_ws_clients",
		Help: "Connected websocket clients",
	})
)
