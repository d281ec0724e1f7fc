// Package metrics exposes Prometheus counters for the screening flow.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/candidate"
)

const namespace = "hh_screener"

const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeUnavailable = "unavailable"
)

// Recorder owns a private registry so tests and multiple instances do not collide.
type Recorder struct {
	registry *prometheus.Registry

	sessionsStarted   prometheus.Counter
	sessionsCompleted *prometheus.CounterVec
	oracleRequests    *prometheus.CounterVec
	questionFallbacks prometheus.Counter
	grades            prometheus.Histogram
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Interview sessions that left the greeting phase.",
		}),
		sessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Interview sessions that reached the farewell phase, by reason.",
		}, []string{"reason"}),
		oracleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Language model requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		questionFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_fallbacks_total",
			Help:      "Question batches served from the template.",
		}),
		grades: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidate_grade",
			Help:      "Grades assigned to finalized candidates.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}

	r.registry.MustRegister(
		r.sessionsStarted,
		r.sessionsCompleted,
		r.oracleRequests,
		r.questionFallbacks,
		r.grades,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

func (r *Recorder) SessionStarted() {
	r.sessionsStarted.Inc()
}

func (r *Recorder) SessionCompleted(reason string, c *candidate.Candidate) {
	r.sessionsCompleted.WithLabelValues(reason).Inc()
	if c != nil && c.Grade != nil {
		r.grades.Observe(float64(*c.Grade))
	}
}

func (r *Recorder) QuestionFallback(string, error) {
	r.questionFallbacks.Inc()
}

func (r *Recorder) OracleRequest(operation string, err error) {
	outcome := OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, ai.ErrOracleUnavailable):
		outcome = OutcomeUnavailable
	default:
		outcome = OutcomeError
	}
	r.oracleRequests.WithLabelValues(operation, outcome).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Instrument counts every call made through gen under the given operation label.
func (r *Recorder) Instrument(gen ai.Generator, operation string) ai.Generator {
	return &instrumented{next: gen, operation: operation, recorder: r}
}

type instrumented struct {
	next      ai.Generator
	operation string
	recorder  *Recorder
}

func (i *instrumented) GenerateContent(ctx context.Context, prompt string) (string, error) {
	out, err := i.next.GenerateContent(ctx, prompt)
	i.recorder.OracleRequest(i.operation, err)
	return out, err
}
