package history

import (
	"strings"
	"time"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
)

// RecordID identifier type
type RecordID string

// AnalysisType labels what the caller submitted.
type AnalysisType string

const (
	TypeText     AnalysisType = "text"
	TypeImage    AnalysisType = "image"
	TypeCombined AnalysisType = "combined"
	TypeDocument AnalysisType = "document"
	TypeMedia    AnalysisType = "media"
)

// Record is one completed analysis kept for the tenant's history list.
type Record struct {
	ID            RecordID      `json:"id"`
	TenantID      string        `json:"tenant_id"`
	Type          AnalysisType  `json:"type"`
	Verdict       fraud.Verdict `json:"verdict"`
	RiskScore     int           `json:"risk_score"`
	AttachmentURL string        `json:"attachment_url,omitempty"`
	Result        fraud.Result  `json:"result"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TypeOf derives the analysis type from the submitted input.
func TypeOf(in fraud.Input) AnalysisType {
	if in.Attachment == nil {
		return TypeText
	}
	if in.Text != "" {
		return TypeCombined
	}
	mt := in.Attachment.MIMEType
	switch {
	case mt == "application/pdf" || mt == "text/plain":
		return TypeDocument
	case strings.HasPrefix(mt, "audio/"), strings.HasPrefix(mt, "video/"):
		return TypeMedia
	default:
		return TypeImage
	}
}
