package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the order-taking service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	ordersTotal     prometheus.Counter
	orderValueTotal prometheus.Counter
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

// DialogueSnapshot is the counter snapshot served by the admin stats
// endpoint, so the dashboard can show activity without scraping /metrics.
type DialogueSnapshot struct {
	MessagesTotal   float64            `json:"messages_total"`
	MessagesByState map[string]float64 `json:"messages_by_state"`
	OrdersTotal     float64            `json:"orders_total"`
	OrderValueTotal float64            `json:"order_value_total"`
	CacheHitRate    float64            `json:"cache_hit_rate"`
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pedidos_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		messagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pedidos_dialogue_messages_total",
				Help: "Total utterances processed, by session state at arrival.",
			},
			[]string{"state"},
		),
		ordersTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pedidos_orders_total",
				Help: "Total orders finalized.",
			},
		),
		orderValueTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pedidos_order_value_total",
				Help: "Cumulative value of finalized orders.",
			},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pedidos_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pedidos_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pedidos_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrMessage counts one processed utterance by the state it arrived in.
func (m *Metrics) IncrMessage(state string) {
	m.messagesTotal.WithLabelValues(state).Inc()
}

// IncrOrder counts a finalized order and accumulates its value.
func (m *Metrics) IncrOrder(total int) {
	m.ordersTotal.Inc()
	m.orderValueTotal.Add(float64(total))
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetDialogueSnapshot gathers current counter values for the admin stats
// endpoint. Prometheus counters are cumulative since process start.
func (m *Metrics) GetDialogueSnapshot() *DialogueSnapshot {
	byState := map[string]float64{}
	total := 0.0

	families, err := m.Registry.Gather()
	if err == nil {
		for _, fam := range families {
			if fam.GetName() != "pedidos_dialogue_messages_total" {
				continue
			}
			for _, metric := range fam.GetMetric() {
				v := metric.GetCounter().GetValue()
				total += v
				for _, label := range metric.GetLabel() {
					if label.GetName() == "state" {
						byState[label.GetValue()] = v
					}
				}
			}
		}
	}

	hits := getCounterValue(m.cacheHits, "catalog")
	misses := getCounterValue(m.cacheMisses, "catalog")
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &DialogueSnapshot{
		MessagesTotal:   total,
		MessagesByState: byState,
		OrdersTotal:     getPlainCounterValue(m.ordersTotal),
		OrderValueTotal: getPlainCounterValue(m.orderValueTotal),
		CacheHitRate:    hitRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getPlainCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
