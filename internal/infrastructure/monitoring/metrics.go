package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	CustomerOperationsTotal *prometheus.CounterVec
	Customers               *prometheus.GaugeVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_service_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		CustomerOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_service_customer_operations_total",
				Help: "Total number of successful customer lifecycle operations.",
			},
			[]string{"operation"},
		),
		Customers: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "customer_service_customers",
				Help: "Number of stored customers by state.",
			},
			[]string{"state"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

// ObserveDBQuery times a query from start and labels it by the error it finished with.
func ObserveDBQuery(queryName string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	RecordDBQuery(queryName, status, time.Since(start))
}

func RecordCustomerOperation(operation string) {
	Business.CustomerOperationsTotal.WithLabelValues(operation).Inc()
}

func SetCustomerCounts(active, inactive int64) {
	Business.Customers.WithLabelValues("active").Set(float64(active))
	Business.Customers.WithLabelValues("inactive").Set(float64(inactive))
}
