package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one service instance. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	Submissions         *prometheus.CounterVec
	Grades              *prometheus.CounterVec
	ConfigurationErrors *prometheus.CounterVec
	TotalsUpdated       prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "text_answer_submissions_total",
				Help: "Answer submissions by variant and evaluation outcome",
			},
			[]string{"variant", "outcome"},
		),
		Grades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "text_answer_grades_total",
				Help: "Manual grading actions by variant and whether the score changed",
			},
			[]string{"variant", "changed"},
		),
		ConfigurationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "text_answer_configuration_errors_total",
				Help: "Scoring attempts aborted by missing questions, results or quiz weights",
			},
			[]string{"resource"},
		),
		TotalsUpdated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "text_answer_result_totals_updated_total",
				Help: "Result total recomputations",
			},
		),
	}

	m.registry.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.Submissions,
		m.Grades,
		m.ConfigurationErrors,
		m.TotalsUpdated,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveSubmission(variant, outcome string) {
	m.Submissions.WithLabelValues(variant, outcome).Inc()
}

func (m *Metrics) ObserveGrade(variant string, changed bool) {
	m.Grades.WithLabelValues(variant, strconv.FormatBool(changed)).Inc()
}

func (m *Metrics) ObserveConfigurationError(resource string) {
	m.ConfigurationErrors.WithLabelValues(resource).Inc()
}

func (m *Metrics) ObserveTotalUpdated() {
	m.TotalsUpdated.Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		m.RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
