// Package metrics expõe as métricas Prometheus do gateway de contato.
//
// Cada Metrics tem seu próprio registry (sem as métricas padrão do processo
// misturadas), servido por Handler em /metrics.
//
// Todos os métodos aceitam receiver nil, assim componentes podem receber
// *Metrics opcional sem checar.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de uma submissão, usados no label "outcome".
const (
	OutcomeForwarded   = "forwarded"
	OutcomeInvalid     = "invalid"
	OutcomeMalformed   = "malformed"
	OutcomeRateLimited = "rate_limited"
	OutcomeUpstream    = "upstream_error"
	OutcomeConfig      = "config_error"
	OutcomeInternal    = "internal_error"
)

type Metrics struct {
	namespace string
	registry  *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
	rateDecisions   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

type Option func(*options)

type options struct {
	namespace    string
	buckets      []float64
	processStats bool
}

// WithNamespace define o namespace das métricas (padrão "contact").
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithHistogramBuckets define os buckets (segundos) dos histogramas de latência.
func WithHistogramBuckets(b []float64) Option {
	return func(o *options) {
		if len(b) > 0 {
			o.buckets = b
		}
	}
}

// WithProcessCollectors registra os collectors de Go runtime e processo.
func WithProcessCollectors(enabled bool) Option {
	return func(o *options) { o.processStats = enabled }
}

func New(opts ...Option) *Metrics {
	o := options{namespace: "contact", buckets: prometheus.DefBuckets}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Metrics{
		namespace: o.namespace,
		registry:  prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route and method.",
			Buckets:   o.buckets,
		}, []string{"route", "method"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"outcome"}),
		rateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Subsystem: "ratelimit",
			Name:      "decisions_total",
			Help:      "Rate limit decisions by result.",
		}, []string{"result"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Form processor call duration by status class.",
			Buckets:   o.buckets,
		}, []string{"class"}),
	}

	m.registry.MustRegister(m.httpRequests, m.httpDuration, m.submissions, m.rateDecisions, m.upstreamLatency)
	if o.processStats {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry expõe o registry (testes, collectors extras).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serve o registry no formato de exposição do Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GaugeFunc registra um gauge lido sob demanda (ex: chaves rastreadas no limiter).
func (m *Metrics) GaugeFunc(subsystem, name, help string, fn func() float64) {
	if m == nil || fn == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, fn))
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RateDecision(allowed bool) {
	if m == nil {
		return
	}
	result := "denied"
	if allowed {
		result = "allowed"
	}
	m.rateDecisions.WithLabelValues(result).Inc()
}

// ObserveUpstream registra a latência da chamada ao processador externo.
// status 0 significa falha de transporte (timeout, DNS, conexão).
func (m *Metrics) ObserveUpstream(status int, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(statusClass(status)).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status <= 0:
		return "error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
