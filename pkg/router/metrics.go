package router

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GenerateTotal counts routed generation attempts per provider and
	// outcome ("success", "failure", "skipped").
	GenerateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyspell_generate_total",
			Help: "Total generation attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// FallbackTotal counts calls that needed more than one provider.
	FallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "copyspell_fallback_total",
			Help: "Routed calls that fell back past the first candidate",
		},
	)

	// TokensTotal counts tokens consumed per provider.
	TokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyspell_tokens_total",
			Help: "Total tokens consumed by provider",
		},
		[]string{"provider"},
	)

	// ProviderRateLimited is 1 while a provider is marked rate-limited.
	ProviderRateLimited = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "copyspell_provider_rate_limited",
			Help: "Whether a provider is currently rate limited",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(GenerateTotal)
	prometheus.MustRegister(FallbackTotal)
	prometheus.MustRegister(TokensTotal)
	prometheus.MustRegister(ProviderRateLimited)
}
