package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
	"github.com/bryanwahyu/fraudshield/internal/middleware"
)

// GET /v1/{tenant}/settings/thresholds
func (r *Router) handleThresholdsGet(w http.ResponseWriter, req *http.Request) error {
	th, err := r.settings.Thresholds(req.Context(), chi.URLParam(req, "tenant"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, th)
}

// PUT /v1/{tenant}/settings/thresholds
// Body: {"low":20,"medium":50,"high":80}
func (r *Router) handleThresholdsPut(w http.ResponseWriter, req *http.Request) error {
	var th fraud.RiskThresholds
	if err := json.NewDecoder(req.Body).Decode(&th); err != nil {
		return badRequest(fmt.Errorf("invalid json body: %w", err))
	}
	if err := r.settings.Update(req.Context(), chi.URLParam(req, "tenant"), th); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, th)
}

// GET /v1/{tenant}/risk-level?score=
func (r *Router) handleRiskLevel(w http.ResponseWriter, req *http.Request) error {
	score, err := middleware.ValidateScore(req.URL.Query().Get("score"))
	if err != nil {
		return badRequest(err)
	}
	lvl, th, err := r.settings.Level(req.Context(), chi.URLParam(req, "tenant"), score)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"score":      score,
		"level":      lvl,
		"thresholds": th,
	})
}
