package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
	"github.com/bryanwahyu/fraudshield/internal/domain/history"
)

type analyzeRequest struct {
	Text       string `json:"text"`
	Attachment *struct {
		Data     string `json:"data"`
		MIMEType string `json:"mime_type"`
	} `json:"attachment"`
	VerifySource bool `json:"verify_source"`
}

type analyzeResponse struct {
	*history.Record
	RiskLevel fraud.RiskLevel `json:"risk_level"`
}

// POST /v1/{tenant}/analyze
// JSON {"text","attachment":{"data","mime_type"},"verify_source"} or
// multipart with fields text, verify_source and an optional file.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)

	var (
		in  fraud.Input
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		in, err = r.multipartInput(req)
	} else {
		in, err = jsonInput(req)
	}
	if err != nil {
		return err
	}

	rec, err := r.analysis.Analyze(req.Context(), tenant, in)
	if err != nil {
		return err
	}

	resp := analyzeResponse{Record: rec}
	if lvl, _, err := r.settings.Level(req.Context(), tenant, rec.RiskScore); err == nil {
		resp.RiskLevel = lvl
	}
	return writeJSON(w, http.StatusOK, resp)
}

func jsonInput(req *http.Request) (fraud.Input, error) {
	var body analyzeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return fraud.Input{}, err
		}
		return fraud.Input{}, badRequest(fmt.Errorf("invalid json body: %w", err))
	}
	in := fraud.Input{Text: body.Text, VerifySource: body.VerifySource}
	if body.Attachment != nil && body.Attachment.Data != "" {
		att, err := fraud.ParseAttachment(body.Attachment.Data, body.Attachment.MIMEType)
		if err != nil {
			return fraud.Input{}, err
		}
		in.Attachment = att
	}
	return in, nil
}

func (r *Router) multipartInput(req *http.Request) (fraud.Input, error) {
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return fraud.Input{}, err
		}
		return fraud.Input{}, badRequest(fmt.Errorf("invalid multipart body: %w", err))
	}

	in := fraud.Input{Text: req.FormValue("text")}
	if v := req.FormValue("verify_source"); v != "" {
		verify, err := strconv.ParseBool(v)
		if err != nil {
			return fraud.Input{}, badRequest(fmt.Errorf("verify_source must be a boolean"))
		}
		in.VerifySource = verify
	}

	file, header, err := req.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return fraud.Input{}, badRequest(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fraud.Input{}, err
	}
	in.Attachment = fraud.NewBytesAttachment(data, uploadMIMEType(header.Header.Get("Content-Type"), data))
	return in, nil
}

// uploadMIMEType trusts the declared part type unless it is missing or generic,
// then sniffs the content.
func uploadMIMEType(declared string, data []byte) string {
	mt := fraud.NormalizeMIMEType(declared)
	if mt != "" && mt != "application/octet-stream" {
		return mt
	}
	return fraud.NormalizeMIMEType(http.DetectContentType(data))
}
