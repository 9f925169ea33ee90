package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalcomb_sends_total",
			Help: "Total number of channel send attempts",
		},
		[]string{"kind", "result"},
	)

	SignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalcomb_signals_total",
			Help: "Total number of inbound trading signals by outcome",
		},
		[]string{"outcome"},
	)

	NewsRelayedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalcomb_news_relayed_total",
			Help: "Total number of news items relayed per category",
		},
		[]string{"category"},
	)

	DedupReadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signalcomb_dedup_read_failures_total",
			Help: "Total number of dedup store read failures treated as unseen",
		},
	)

	ChartFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signalcomb_chart_failures_total",
			Help: "Total number of chart render attempts that produced no image",
		},
	)
)
