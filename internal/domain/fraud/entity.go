package fraud

import "strings"

// Verdict is one of five ordinal risk categories.
type Verdict string

const (
	VerdictSafe       Verdict = "Safe"
	VerdictLowRisk    Verdict = "Low Risk"
	VerdictSuspicious Verdict = "Suspicious"
	VerdictHighRisk   Verdict = "High Risk"
	VerdictCritical   Verdict = "Critical"
)

// Verdicts lists every verdict in ascending order of risk.
var Verdicts = []Verdict{VerdictSafe, VerdictLowRisk, VerdictSuspicious, VerdictHighRisk, VerdictCritical}

// ParseVerdict matches s case-insensitively against the known verdicts and
// returns the canonical literal.
func ParseVerdict(s string) (Verdict, bool) {
	s = strings.TrimSpace(s)
	for _, v := range Verdicts {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

// RedFlag is one indicator found in the analyzed content.
type RedFlag struct {
	Flag        string `json:"flag"`
	Explanation string `json:"explanation"`
}

// Source is a web citation returned by a grounded call.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Result is the normalized analysis, whichever protocol produced it.
type Result struct {
	RiskScore       int       `json:"riskScore"`
	Verdict         Verdict   `json:"verdict"`
	RedFlags        []RedFlag `json:"redFlags"`
	Analysis        string    `json:"analysis"`
	Recommendations []string  `json:"recommendations"`
	Transcript      *string   `json:"transcript,omitempty"`
	OCRText         *string   `json:"ocrText,omitempty"`
	Sources         []Source  `json:"sources,omitempty"`
}

// Input is what a caller submits for one analysis.
type Input struct {
	Text         string
	Attachment   *Attachment
	VerifySource bool
}

// SegmentKind tags a Segment as text or binary.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentBinary
)

// Segment is one ordered unit of an outbound multimodal request.
type Segment struct {
	Kind     SegmentKind
	Text     string
	Data     []byte
	MIMEType string
}

// TextSegment builds a text segment.
func TextSegment(text string) Segment {
	return Segment{Kind: SegmentText, Text: text}
}

// BinarySegment builds a binary segment tagged with its MIME type.
func BinarySegment(data []byte, mimeType string) Segment {
	return Segment{Kind: SegmentBinary, Data: data, MIMEType: mimeType}
}
