// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_queries_total",
			Help: "Total number of sales queries by backend and status",
		},
		[]string{"backend", "status"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sales_query_duration_seconds",
			Help: "Duration of sales query execution in seconds",
		},
		[]string{"backend"},
	)

	CatalogReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_catalog_reads_total",
			Help: "Total number of filter catalog reads by source",
		},
		[]string{"source"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"path", "method", "status"},
	)
)
