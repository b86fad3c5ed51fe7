package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Row processing outcomes used as the status label of RowsProcessed.
const (
	StatusGeocoded = "geocoded"
	StatusNotFound = "not_found"
	StatusFailed   = "failed"
)

type Metrics struct {
	RowsProcessed  *prometheus.CounterVec
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	FetchBytes     prometheus.Counter
	PointsLoaded   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RowsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "etl_rows_processed_total",
			Help: "Total number of processed input rows by outcome.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		FetchBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "etl_fetch_bytes_total",
			Help: "Total bytes downloaded from the remote spreadsheet export.",
		}),
		PointsLoaded: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "etl_points_loaded_total",
			Help: "Total number of point features loaded into the workspace.",
		}),
	}
}
