package httpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/fraudshield/internal/application/analysis"
	appchat "github.com/bryanwahyu/fraudshield/internal/application/chat"
	appsettings "github.com/bryanwahyu/fraudshield/internal/application/settings"
	"github.com/bryanwahyu/fraudshield/internal/domain/chat"
	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
	"github.com/bryanwahyu/fraudshield/internal/infra/ai/prompt"
	"github.com/bryanwahyu/fraudshield/internal/infra/db/memory"
	"github.com/bryanwahyu/fraudshield/internal/middleware"
)

type stubGenerator struct {
	reply fraud.Reply
	err   error
	last  fraud.GenerateRequest
}

func (g *stubGenerator) Generate(_ context.Context, req fraud.GenerateRequest) (fraud.Reply, error) {
	g.last = req
	return g.reply, g.err
}

type stubConv struct {
	frags []string
	err   error
}

func (c *stubConv) Stream(context.Context, string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range c.frags {
			if !yield(f, nil) {
				return
			}
		}
		if c.err != nil {
			yield("", c.err)
		}
	}
}

type stubProvider struct{ conv *stubConv }

func (p *stubProvider) Open(context.Context, string) (chat.Conversation, error) { return p.conv, nil }

const scamJSON = `{"riskScore":88,"verdict":"Critical","redFlags":[{"flag":"Urgency","explanation":"Act now"}],"analysis":"Prize scam.","recommendations":["Ignore it"]}`

type fixture struct {
	handler http.Handler
	gen     *stubGenerator
	conv    *stubConv
}

func newFixture(t *testing.T, keys map[string]string) *fixture {
	t.Helper()
	gen := &stubGenerator{reply: fraud.Reply{Text: scamJSON}}
	conv := &stubConv{frags: []string{"Use ", "2FA."}}
	h := NewRouter(Deps{
		Analysis: &analysis.Service{
			Generator: gen,
			History:   memory.NewHistoryRepository(),
			Failures:  memory.NewFailureRepository(),
		},
		Settings: &appsettings.Service{Store: memory.NewThresholdRepository(), Defaults: fraud.DefaultThresholds},
		Chat:     &appchat.Relay{Provider: &stubProvider{conv: conv}},
		Sessions: NewSessionRegistry(10, time.Minute),
		Checkers: map[string]middleware.HealthChecker{},
		APIKeys:  keys,
	})
	return &fixture{handler: h, gen: gen, conv: conv}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAnalyze_JSONThenHistory(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/v1/acme/analyze", map[string]any{"text": "You won!"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[map[string]any](t, rec)
	assert.Equal(t, "critical", got["risk_level"])
	assert.Equal(t, "text", got["type"])
	result := got["result"].(map[string]any)
	assert.EqualValues(t, 88, result["riskScore"])
	assert.Equal(t, "Critical", result["verdict"])
	id := got["id"].(string)

	rec = f.do(t, http.MethodGet, "/v1/acme/history/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode[map[string]any](t, rec)["id"])

	rec = f.do(t, http.MethodGet, "/v1/acme/history?page=1&page_size=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string]any](t, rec)
	assert.Len(t, list["items"], 1)

	assert.Equal(t, false, list["has_more"])

	rec = f.do(t, http.MethodGet, "/v1/globex/history/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/v1/acme/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["deleted"])
}

func TestHistoryList_PageOutOfRange(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/v1/acme/history?page=100000000000000000&page_size=100", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "page must be at most")

	rec = f.do(t, http.MethodGet, "/v1/acme/history?page=-4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["page"])
}

func TestAnalyze_DataURIAttachment(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/v1/acme/analyze", map[string]any{
		"attachment": map[string]string{"data": "data:image/jpeg;base64,AQID"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, f.gen.last.Segments, 2)
	assert.Equal(t, fraud.SegmentBinary, f.gen.last.Segments[0].Kind)
	assert.Equal(t, "image/jpeg", f.gen.last.Segments[0].MIMEType)
	assert.Equal(t, []byte{1, 2, 3}, f.gen.last.Segments[0].Data)
}

func TestAnalyze_Multipart(t *testing.T) {
	f := newFixture(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", "check this"))
	require.NoError(t, mw.WriteField("verify_source", "true"))
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="note.txt"`)
	hdr.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	part.Write([]byte("Send gift cards to claim your refund"))
	require.NoError(t, mw.Close())

	f.gen.reply = fraud.Reply{
		Text:    "RISK_SCORE: 70\nVERDICT: High Risk\nANALYSIS: Refund scam.",
		Sources: []fraud.Source{{URI: "https://ftc.example", Title: "FTC"}},
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/acme/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, fraud.ProtocolText, f.gen.last.Protocol)
	require.Len(t, f.gen.last.Segments, 3)
	assert.Contains(t, f.gen.last.Segments[1].Text, "Send gift cards to claim your refund")

	got := decode[map[string]any](t, rec)
	assert.Equal(t, "combined", got["type"])
	sources := got["result"].(map[string]any)["sources"].([]any)
	assert.Len(t, sources, 1)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		genErr error
		reply  string
		status int
	}{
		{"empty input", map[string]any{}, nil, scamJSON, http.StatusBadRequest},
		{"unsupported media", map[string]any{"attachment": map[string]string{"data": "AQID", "mime_type": "application/zip"}}, nil, scamJSON, http.StatusUnsupportedMediaType},
		{"bad base64", map[string]any{"attachment": map[string]string{"data": "!!!", "mime_type": "image/png"}}, nil, scamJSON, http.StatusBadRequest},
		{"quota", map[string]any{"text": "hi"}, fraud.ErrQuotaExceeded, "", http.StatusTooManyRequests},
		{"grounding unsupported", map[string]any{"text": "hi", "verify_source": true}, fraud.ErrGroundingUnsupported, "", http.StatusUnprocessableEntity},
		{"transport", map[string]any{"text": "hi"}, errors.New("reset"), "", http.StatusBadGateway},
		{"malformed", map[string]any{"text": "hi"}, nil, `{"verdict":"Safe"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.gen.err = tt.genErr
			f.gen.reply = fraud.Reply{Text: tt.reply}
			rec := f.do(t, http.MethodPost, "/v1/acme/analyze", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, decode[map[string]string](t, rec), "error")
		})
	}

	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/acme/analyze", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.do(t, http.MethodPost, "/v1/acme/analyze", map[string]any{})
	rec = f.do(t, http.MethodGet, "/v1/acme/failures", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string]any](t, rec)["items"], 1)
}

func TestSettingsAndRiskLevel(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/v1/acme/settings/thresholds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fraud.DefaultThresholds, decode[fraud.RiskThresholds](t, rec))

	rec = f.do(t, http.MethodPut, "/v1/acme/settings/thresholds", fraud.RiskThresholds{Low: 50, Medium: 40, High: 90})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/v1/acme/settings/thresholds", fraud.RiskThresholds{Low: 10, Medium: 30, High: 60})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/acme/risk-level?score=45", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "high", decode[map[string]any](t, rec)["level"])

	rec = f.do(t, http.MethodGet, "/v1/acme/risk-level?score=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func readEvents(t *testing.T, body string) []appchat.Reply {
	t.Helper()
	var out []appchat.Reply
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var rep appchat.Reply
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &rep))
		out = append(out, rep)
	}
	return out
}

func TestChatFlow(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/v1/acme/chat/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decode[sessionView](t, rec)
	require.Len(t, sess.Turns, 1)
	assert.Equal(t, prompt.ChatGreeting, sess.Turns[0].Text)

	rec = f.do(t, http.MethodPost, "/v1/acme/chat/sessions/"+sess.ID+"/messages", map[string]string{"text": "How do I stay safe?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	events := readEvents(t, rec.Body.String())
	assert.Equal(t, []appchat.Reply{
		{Text: "Use "},
		{Text: "Use 2FA."},
		{Text: "Use 2FA.", Done: true},
	}, events)

	rec = f.do(t, http.MethodGet, "/v1/acme/chat/sessions/"+sess.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[sessionView](t, rec).Turns, 3)

	rec = f.do(t, http.MethodGet, "/v1/globex/chat/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/acme/chat/sessions/"+sess.ID+"/messages", map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/v1/acme/chat/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/v1/acme/chat/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatFallbackEvent(t *testing.T) {
	f := newFixture(t, nil)
	f.conv.frags = nil
	f.conv.err = errors.New("network down")

	rec := f.do(t, http.MethodPost, "/v1/acme/chat/sessions", nil)
	sess := decode[sessionView](t, rec)

	rec = f.do(t, http.MethodPost, "/v1/acme/chat/sessions/"+sess.ID+"/messages", map[string]string{"text": "hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	events := readEvents(t, rec.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, prompt.ChatFallback, events[0].Text)
	assert.True(t, events[0].Fallback)
}

func TestAuthAndHealth(t *testing.T) {
	f := newFixture(t, map[string]string{"acme": "k-acme"})

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/acme/history", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/acme/history", nil)
	req.Header.Set("Authorization", "Bearer k-acme")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/globex/history", nil)
	req.Header.Set("Authorization", "Bearer k-acme")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUploadMIMEType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	assert.Equal(t, "image/png", uploadMIMEType("", png))
	assert.Equal(t, "image/png", uploadMIMEType("application/octet-stream", png))
	assert.Equal(t, "application/pdf", uploadMIMEType("Application/PDF", png))
	assert.Equal(t, "text/plain", uploadMIMEType("", []byte("hello")))
}

func TestSessionRegistry(t *testing.T) {
	reg := NewSessionRegistry(1, time.Minute)
	a := &appchat.Session{ID: "a"}
	b := &appchat.Session{ID: "b"}

	reg.Put("acme", a)
	reg.Put("acme", b)
	assert.Equal(t, 1, reg.Len())

	_, err := reg.Get("acme", "a")
	assert.ErrorIs(t, err, errSessionNotFound)
	got, err := reg.Get("acme", "b")
	require.NoError(t, err)
	assert.Same(t, b, got)
}
