package predict

import "github.com/prometheus/client_golang/prometheus"

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "koiserve",
			Subsystem: "predict",
			Name:      "predictions_total",
			Help:      "Predicted rows by disposition label",
		},
		[]string{"label"},
	)

	inferenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "koiserve",
			Subsystem: "predict",
			Name:      "batch_duration_seconds",
			Help:      "Duration of one Predict call (normalize, impute, infer)",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
	)

	batchRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "koiserve",
			Subsystem: "predict",
			Name:      "batch_rows",
			Help:      "Rows per Predict call",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	imputedValuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "koiserve",
			Subsystem: "features",
			Name:      "imputed_values_total",
			Help:      "Missing values filled by the imputer, by column",
		},
		[]string{"column"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "koiserve",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Prediction cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	storeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "koiserve",
			Subsystem: "store",
			Name:      "write_errors_total",
			Help:      "Failed writes to the prediction log",
		},
	)
)

func init() {
	prometheus.MustRegister(predictionsTotal, inferenceDuration, batchRows, imputedValuesTotal, cacheLookups, storeErrors)
}
