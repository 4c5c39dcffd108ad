package observability

import "github.com/prometheus/client_golang/prometheus"

// Domain counters. Labels are closed enums (signer, outcome, entity) so
// cardinality stays fixed.
var (
	// Mints counts mint attempts by signer (admin|wallet|ledger) and outcome
	// (success|failure).
	Mints = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nft_mints_total",
			Help: "NFT mint attempts by signer and outcome.",
		},
		[]string{"signer", "outcome"},
	)

	// ImageFallbacks counts achievement images served from the placeholder list.
	ImageFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nft_image_fallbacks_total",
			Help: "Achievement images that fell back to a static placeholder.",
		},
	)

	// ProvisionedRows counts rows created lazily by the provisioning chain.
	ProvisionedRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioned_rows_total",
			Help: "Rows created on demand before a mint, by entity.",
		},
		[]string{"entity"},
	)

	// AnalysisRetries counts rate-limited video analysis calls that were retried.
	AnalysisRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "video_analysis_retries_total",
			Help: "Video analysis calls retried after a 429.",
		},
	)
)

func init() {
	prometheus.MustRegister(Mints, ImageFallbacks, ProvisionedRows, AnalysisRetries)
}
