package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/fraudshield/internal/domain/history"
	"github.com/bryanwahyu/fraudshield/internal/middleware"
)

// GET /v1/{tenant}/history?page=&page_size=
func (r *Router) handleHistoryList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	page, err := middleware.ValidatePage(page)
	if err != nil {
		return badRequest(err)
	}
	size = middleware.ValidateLimit(size)

	list, err := r.analysis.List(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, history.NewPage(list, page, size))
}

// GET /v1/{tenant}/history/{id}
func (r *Router) handleHistoryGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		return badRequest(err)
	}

	rec, err := r.analysis.Get(req.Context(), tenant, history.RecordID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// DELETE /v1/{tenant}/history
func (r *Router) handleHistoryClear(w http.ResponseWriter, req *http.Request) error {
	n, err := r.analysis.Clear(req.Context(), chi.URLParam(req, "tenant"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// GET /v1/{tenant}/failures?limit=
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.analysis.RecentFailures(req.Context(), chi.URLParam(req, "tenant"), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"items": list})
}

