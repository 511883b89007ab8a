package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds each dependency check on its own.
const checkTimeout = 2 * time.Second

// HealthChecker reports whether one dependency (database, archive bucket) is usable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the history database.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

type CheckStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// runChecks runs every checker concurrently, each under checkTimeout.
func runChecks(ctx context.Context, checkers map[string]HealthChecker) (map[string]CheckStatus, bool) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		healthy = true
		out     = make(map[string]CheckStatus, len(checkers))
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			start := time.Now()
			err := checker.Check(cctx)
			st := CheckStatus{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				st.Status = "unhealthy"
				st.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			out[name] = st
			if err != nil {
				healthy = false
			}
		}()
	}
	wg.Wait()
	return out, healthy
}

// HealthHandler reports every dependency with its latency; 503 when any fails.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks, ok := runChecks(r.Context(), checkers)
		health := HealthStatus{Status: "healthy", Timestamp: time.Now(), Checks: checks}
		code := http.StatusOK
		if !ok {
			health.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, health)
	}
}

// ReadinessHandler answers ready only while every dependency passes. Check
// details stay on /healthz.
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ok := runChecks(r.Context(), checkers)
		if !ok {
			writeHealth(w, http.StatusServiceUnavailable, HealthStatus{Status: "not_ready", Timestamp: time.Now()})
			return
		}
		writeHealth(w, http.StatusOK, HealthStatus{Status: "ready", Timestamp: time.Now()})
	}
}

// LivenessHandler only proves the process serves HTTP.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeHealth(w http.ResponseWriter, code int, v HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
