package failures

import "time"

// Phase names the analysis step that failed.
type Phase string

const (
	PhaseAssemble Phase = "assemble"
	PhaseGenerate Phase = "generate"
	PhaseDecode   Phase = "decode"
)

// Failure represents a persisted analysis error entry
type Failure struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Phase     Phase     `json:"phase"`
	Protocol  string    `json:"protocol,omitempty"`
	MIMEType  string    `json:"mime_type,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
