package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"greeter/app/usecase"
	"greeter/internal/domain/entity"
)

type MessageHandler struct {
	messageService usecase.MessageUsecase
	logger         *slog.Logger

	// метрики
	reqDuration *prometheus.HistogramVec
	reqCount    *prometheus.CounterVec
	errCount    *prometheus.CounterVec
}

func NewMessageHandler(
	messageService usecase.MessageUsecase,
	logger *slog.Logger,
	reg prometheus.Registerer,
) *MessageHandler {

	reqDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	reqCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path"},
	)

	errCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP request errors.",
		},
		[]string{"method", "path", "status"},
	)

	reg.MustRegister(reqDuration, reqCount, errCount)

	return &MessageHandler{
		messageService: messageService,
		logger:         logger,
		reqDuration:    reqDuration,
		reqCount:       reqCount,
		errCount:       errCount,
	}
}

// Middleware для метрик
func (h *MessageHandler) withMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		method := r.Method

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		duration := time.Since(start).Seconds()
		statusStr := strconv.Itoa(rw.status)

		h.reqCount.WithLabelValues(method, path).Inc()
		h.reqDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		if rw.status >= 400 {
			h.errCount.WithLabelValues(method, path, statusStr).Inc()
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *MessageHandler) RegisterRoutes(r *mux.Router, gatherer prometheus.Gatherer) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/generate-message", h.withMetrics(h.handleGenerateMessage)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/health", h.withMetrics(h.handleHealth)).Methods(http.MethodGet)

	// Prometheus
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// GET /api/generate-message?days=N
func (h *MessageHandler) handleGenerateMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		// preflight already answered by the CORS layer for allowed origins
		w.WriteHeader(http.StatusNoContent)
		return
	}

	logger := requestLogger(r, h.logger)
	logger.Info("Handling GET /api/generate-message", "origin", r.Header.Get("Origin"))
	defer logger.Debug("handler end")

	ctx := usecase.ContextWithLogger(r.Context(), logger)
	msg, err := h.messageService.GenerateMessage(ctx, r.URL.Query().Get("days"))
	if err != nil {
		derr := entity.AsError(err)
		logger.Error("sending error response", "status", derr.Status, "kind", derr.Kind, "err", err)
		writeError(w, derr.Status, derr.Message)
		return
	}

	logger.Info("sending success response")
	writeJSON(w, http.StatusOK, msg)
}

// GET /api/health
func (h *MessageHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"ok":                   true,
		"ts":                   time.Now().UTC(),
		"generator_configured": h.messageService.Configured(),
	}
	writeJSON(w, http.StatusOK, status)
}
