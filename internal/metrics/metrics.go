package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

var (
	expressionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formbuilder",
			Name:      "visibility_expression_failures_total",
			Help:      "Expression rules that failed and were treated as visible",
		},
		[]string{"reason"},
	)

	storeMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formbuilder",
			Name:      "store_mutations_total",
			Help:      "Completed field collection mutations",
		},
		[]string{"kind"},
	)

	fieldCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "formbuilder",
			Name:      "store_fields",
			Help:      "Number of fields in the designed form",
		},
	)
)

func init() {
	prometheus.MustRegister(expressionFailures)
	prometheus.MustRegister(storeMutations)
	prometheus.MustRegister(fieldCount)
}

// RecordExpressionFailure counts a failed expression rule. It matches
// visibility.FailureHandler.
func RecordExpressionFailure(f visibility.Failure) {
	expressionFailures.WithLabelValues(f.Reason).Inc()
}

// RecordStoreEvent counts a store mutation and tracks the collection size. It
// matches store.Listener.
func RecordStoreEvent(e store.Event) {
	storeMutations.WithLabelValues(string(e.Kind)).Inc()
	fieldCount.Set(float64(e.Len))
}
