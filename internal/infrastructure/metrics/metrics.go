package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSucceeded   = "succeeded"
	OutcomeBlocked     = "blocked"
	OutcomeFailed      = "failed"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
)

var (
	// Messages
	MessageOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greeter_message_outcomes_total",
			Help: "Generate-message requests by terminal state",
		},
		[]string{"outcome"}, // succeeded|blocked|failed|invalid|unavailable
	)
	PromptSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greeter_prompt_selections_total",
			Help: "Number of times each prompt template was selected",
		},
		[]string{"prompt"},
	)

	// LLM
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greeter_llm_requests_total",
			Help: "Number of LLM requests by model",
		},
		[]string{"model"},
	)
	LLMDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greeter_llm_request_duration_seconds",
			Help:    "Duration of LLM requests",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 0.25s..32s
		},
		[]string{"model"},
	)
	LLMBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greeter_llm_blocked_total",
			Help: "Generations withheld by the provider, by reason",
		},
		[]string{"reason"},
	)

	// Errors
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greeter_errors_total",
			Help: "Errors encountered in components",
		},
		[]string{"component", "type"},
	)
)

func init() {
	prometheus.MustRegister(
		// Messages
		MessageOutcomes,
		PromptSelections,
		// LLM
		LLMRequests,
		LLMDurationSeconds,
		LLMBlocked,
		// Errors
		Errors,
	)
}

// NewMetricsServer serves /metrics on its own listener.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// StartMetricsServer blocks until srv stops. A clean shutdown is not an error.
func StartMetricsServer(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func ShutdownMetricsServer(ctx context.Context, srv *http.Server) error {
	return srv.Shutdown(ctx)
}

// Messages
func IncMessageOutcome(outcome string) {
	MessageOutcomes.WithLabelValues(outcome).Inc()
}

func IncPromptSelection(index int) {
	PromptSelections.WithLabelValues(strconv.Itoa(index)).Inc()
}

// LLM
func IncLLMRequest(model string) {
	LLMRequests.WithLabelValues(model).Inc()
}

func ObserveLLMDuration(model string, d time.Duration) {
	LLMDurationSeconds.WithLabelValues(model).Observe(d.Seconds())
}

func IncLLMBlocked(reason string) {
	LLMBlocked.WithLabelValues(reason).Inc()
}

// Errors
func IncError(component, typ string) {
	Errors.WithLabelValues(component, typ).Inc()
}
