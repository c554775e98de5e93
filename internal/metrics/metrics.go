package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ModeGateway = "gateway"
	ModeDirect  = "direct"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedrockgw_client_requests_total",
			Help: "Total number of chat calls",
		},
		[]string{"mode", "model", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bedrockgw_client_request_duration_seconds",
			Help:    "Chat call duration in seconds, signing included",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"mode", "model"},
	)

	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedrockgw_client_tokens_total",
			Help: "Total number of tokens reported by the provider",
		},
		[]string{"mode", "model", "type"},
	)

	CostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedrockgw_client_cost_usd_total",
			Help: "Estimated on-demand cost in USD",
		},
		[]string{"mode", "model"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedrockgw_client_errors_total",
			Help: "Total number of failed chat calls by error kind",
		},
		[]string{"mode", "kind"},
	)
)

func RecordRequest(mode, model, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(mode, model, status).Inc()
	RequestDuration.WithLabelValues(mode, model).Observe(durationSec)
}

func RecordTokens(mode, model string, inputTokens, outputTokens int) {
	TokensTotal.WithLabelValues(mode, model, "input").Add(float64(inputTokens))
	TokensTotal.WithLabelValues(mode, model, "output").Add(float64(outputTokens))
}

func RecordCost(mode, model string, costUSD float64) {
	CostTotal.WithLabelValues(mode, model).Add(costUSD)
}

func RecordError(mode, kind string) {
	ErrorsTotal.WithLabelValues(mode, kind).Inc()
}
