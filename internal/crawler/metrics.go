package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawl.
type Metrics struct {
	Registry           *prometheus.Registry
	PagesClassified    *prometheus.CounterVec
	ProductsInserted   prometheus.Counter
	ProductsDeduped    prometheus.Counter
	TablesExtracted    prometheus.Counter
	ExtractionFailures prometheus.Counter
	RestrictionEvents  prometheus.Counter
	UnitsSkipped       prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pagesClassified := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_pages_classified_total",
			Help: "Total pages classified, by page kind.",
		},
		[]string{"kind"},
	)
	productsInserted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_products_inserted_total",
			Help: "Total product records inserted into the document store.",
		},
	)
	productsDeduped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_products_deduped_total",
			Help: "Total products skipped because their link already exists.",
		},
	)
	tablesExtracted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_tables_extracted_total",
			Help: "Total specification tables extracted successfully.",
		},
	)
	extractionFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_extraction_failures_total",
			Help: "Total table extractions recorded as error markers.",
		},
	)
	restrictionEvents := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_restriction_events_total",
			Help: "Total access-restriction signals that aborted a session.",
		},
	)
	unitsSkipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_units_skipped_total",
			Help: "Total crawl units skipped via the skip set.",
		},
	)

	registry.MustRegister(
		pagesClassified, productsInserted, productsDeduped,
		tablesExtracted, extractionFailures, restrictionEvents, unitsSkipped,
	)

	return &Metrics{
		Registry:           registry,
		PagesClassified:    pagesClassified,
		ProductsInserted:   productsInserted,
		ProductsDeduped:    productsDeduped,
		TablesExtracted:    tablesExtracted,
		ExtractionFailures: extractionFailures,
		RestrictionEvents:  restrictionEvents,
		UnitsSkipped:       unitsSkipped,
	}
}
