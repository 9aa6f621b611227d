package rawg

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы запроса для метки outcome.
const (
	outcomeOK       = "ok"
	outcomeNetwork  = "network_error"
	outcomeUpstream = "upstream_error"
)

// Metrics — метрики исходящих запросов к каталогу.
// Нулевой указатель допустим: наблюдения просто не пишутся.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil — без регистрации).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "rawg",
			Name:      "requests_total",
			Help:      "Outgoing catalog requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalog",
			Subsystem: "rawg",
			Name:      "request_duration_seconds",
			Help:      "Latency of outgoing catalog requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}

	return m
}

func (m *Metrics) observe(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.duration.WithLabelValues(endpoint).Observe(d.Seconds())
}
