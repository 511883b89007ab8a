package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appchat "github.com/bryanwahyu/fraudshield/internal/application/chat"
	"github.com/bryanwahyu/fraudshield/internal/domain/chat"
	"github.com/bryanwahyu/fraudshield/internal/middleware"
)

type sessionView struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Turns     []chat.Turn `json:"turns"`
}

func viewOf(s *appchat.Session) sessionView {
	return sessionView{ID: s.ID, CreatedAt: s.CreatedAt, Turns: s.Transcript()}
}

// POST /v1/{tenant}/chat/sessions
func (r *Router) handleChatCreate(w http.ResponseWriter, req *http.Request) error {
	sess, err := r.chat.NewSession(req.Context())
	if err != nil {
		return err
	}
	r.sessions.Put(chi.URLParam(req, "tenant"), sess)
	return writeJSON(w, http.StatusCreated, viewOf(sess))
}

// GET /v1/{tenant}/chat/sessions/{id}
func (r *Router) handleChatTranscript(w http.ResponseWriter, req *http.Request) error {
	sess, err := r.sessions.Get(chi.URLParam(req, "tenant"), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, viewOf(sess))
}

// DELETE /v1/{tenant}/chat/sessions/{id}
func (r *Router) handleChatDelete(w http.ResponseWriter, req *http.Request) error {
	if !r.sessions.Remove(chi.URLParam(req, "tenant"), chi.URLParam(req, "id")) {
		return errSessionNotFound
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/{tenant}/chat/sessions/{id}/messages
// Body: {"text": "..."}. Replies as server-sent events, one "message" event
// per update carrying the accumulated text; the last one has done=true.
func (r *Router) handleChatSend(w http.ResponseWriter, req *http.Request) error {
	sess, err := r.sessions.Get(chi.URLParam(req, "tenant"), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest(fmt.Errorf("invalid json body: %w", err))
	}
	text := middleware.SanitizeString(body.Text)
	if text == "" {
		return badRequest(errors.New("text is required"))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	r.chat.Send(req.Context(), sess, text, func(rep appchat.Reply) {
		b, err := json.Marshal(rep)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", b)
		if flusher != nil {
			flusher.Flush()
		}
	})
	return nil
}
