package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/fraudshield/internal/application/analysis"
	appchat "github.com/bryanwahyu/fraudshield/internal/application/chat"
	appsettings "github.com/bryanwahyu/fraudshield/internal/application/settings"
	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
	"github.com/bryanwahyu/fraudshield/internal/domain/history"
	"github.com/bryanwahyu/fraudshield/internal/middleware"
)

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Analysis *analysis.Service
	Settings *appsettings.Service
	Chat     *appchat.Relay
	Sessions *SessionRegistry

	Checkers       map[string]middleware.HealthChecker
	APIKeys        map[string]string
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string
	MaxUploadBytes int64
}

type Router struct {
	analysis  *analysis.Service
	settings  *appsettings.Service
	chat      *appchat.Relay
	sessions  *SessionRegistry
	maxUpload int64
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		analysis:  d.Analysis,
		settings:  d.Settings,
		chat:      d.Chat,
		sessions:  d.Sessions,
		maxUpload: d.MaxUploadBytes,
	}
	if r.maxUpload <= 0 {
		r.maxUpload = 20 << 20
	}
	if r.settings == nil {
		r.settings = &appsettings.Service{Defaults: fraud.DefaultThresholds}
	}

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.APIKeyAuth(d.APIKeys))
	if d.Limiter != nil {
		mux.Use(middleware.RateLimitMiddleware(d.Limiter))
	}

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(d.Checkers))
	mux.Get("/readyz", middleware.ReadinessHandler(d.Checkers))
	mux.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(middleware.RequireValidTenant)

		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/history", r.wrap(r.handleHistoryList))
		rt.Delete("/history", r.wrap(r.handleHistoryClear))
		rt.Get("/history/{id}", r.wrap(r.handleHistoryGet))
		rt.Get("/failures", r.wrap(r.handleFailures))

		rt.Get("/settings/thresholds", r.wrap(r.handleThresholdsGet))
		rt.Put("/settings/thresholds", r.wrap(r.handleThresholdsPut))
		rt.Get("/risk-level", r.wrap(r.handleRiskLevel))

		rt.Post("/chat/sessions", r.wrap(r.handleChatCreate))
		rt.Get("/chat/sessions/{id}", r.wrap(r.handleChatTranscript))
		rt.Delete("/chat/sessions/{id}", r.wrap(r.handleChatDelete))
		rt.Post("/chat/sessions/{id}/messages", r.wrap(r.handleChatSend))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// statusError carries an explicit HTTP status for request-shape problems.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &statusError{code: http.StatusBadRequest, err: err}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			code := statusFor(err)
			if code >= http.StatusInternalServerError {
				log.WithField("path", req.URL.Path).WithError(err).Error("request failed")
			}
			writeJSON(w, code, map[string]string{"error": err.Error()})
		}
	}
}

// statusFor maps errors to HTTP codes. Order matters: a generate failure
// wraps both ErrEmptyResponse and its cause.
func statusFor(err error) int {
	var se *statusError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &se):
		return se.code
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, history.ErrNotFound), errors.Is(err, errSessionNotFound), errors.Is(err, analysis.ErrHistoryDisabled):
		return http.StatusNotFound
	case errors.Is(err, fraud.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, fraud.ErrEmptyInput), errors.Is(err, fraud.ErrInvalidAttachment), errors.Is(err, fraud.ErrInvalidThresholds):
		return http.StatusBadRequest
	case errors.Is(err, fraud.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, fraud.ErrGroundingUnsupported):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fraud.ErrEmptyResponse), errors.Is(err, fraud.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
