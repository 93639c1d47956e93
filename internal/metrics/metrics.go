// Package metrics exposes Prometheus instruments for extraction and spend governance.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// extraction attempts by source (url, photo, youtube), path (fast, slow, cache) and outcome
	Extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mise",
		Name:      "extractions_total",
		Help:      "Recipe extraction attempts by source, path and outcome.",
	}, []string{"source", "path", "outcome"})

	// billable AI calls by operation
	AICalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mise",
		Name:      "ai_calls_total",
		Help:      "Billable AI extractor calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	// cost recorded against the spending ledger
	SpendUSD = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mise",
		Name:      "spend_usd_total",
		Help:      "Total AI spend recorded by this process, in USD.",
	})

	// quota and breaker denials by reason
	Denials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mise",
		Name:      "usage_denials_total",
		Help:      "Extraction requests refused by the usage resolver, by reason.",
	}, []string{"reason"})

	// rate limiter rejections by limiter name
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mise",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a rate limiter.",
	}, []string{"limiter"})

	ledgerDaily = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mise",
		Name:      "ledger_daily_usd",
		Help:      "Current daily spending accumulator.",
	})

	ledgerMonthly = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mise",
		Name:      "ledger_monthly_usd",
		Help:      "Current monthly spending accumulator.",
	})

	ledgerPaused = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mise",
		Name:      "ledger_paused",
		Help:      "1 when the spending breaker is tripped.",
	})
)

// records the latest observed ledger state
func ObserveLedger(daily, monthly float64, paused bool) {
	ledgerDaily.Set(daily)
	ledgerMonthly.Set(monthly)

	if paused {
		ledgerPaused.Set(1)
	} else {
		ledgerPaused.Set(0)
	}
}
