package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet_enricher"

var (
	// VendorRequests counts outbound Arkham requests by endpoint and outcome.
	VendorRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vendor_requests_total",
		Help:      "Arkham API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// AddressOutcomes counts enriched addresses by job and result.
	AddressOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "addresses_total",
		Help:      "Addresses processed by job and result.",
	}, []string{"job", "result"})

	// BatchDuration observes how long one enrichment pool takes to drain.
	BatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Duration of one enrichment batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"job"})

	// ExportedRows is the number of data rows in the last CSV written per job.
	ExportedRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "exported_rows",
		Help:      "Data rows in the last exported CSV.",
	}, []string{"job"})

	// TableRequests counts Dune API calls by operation and outcome.
	TableRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "table_requests_total",
		Help:      "Dune API requests by operation and outcome.",
	}, []string{"operation", "outcome"})

	registerOnce sync.Once
)

// MustRegister registers all collectors with the default registry. Safe to call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(VendorRequests, AddressOutcomes, BatchDuration, ExportedRows, TableRequests)
	})
}
