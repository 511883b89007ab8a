package fraud

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

type wireResult struct {
	RiskScore       *float64   `json:"riskScore"`
	Verdict         *string    `json:"verdict"`
	RedFlags        *[]RedFlag `json:"redFlags"`
	Analysis        *string    `json:"analysis"`
	Recommendations *[]string  `json:"recommendations"`
	Transcript      *string    `json:"transcript"`
	OCRText         *string    `json:"ocrText"`
}

// DecodeJSON decodes a schema-constrained body. Any syntax error, missing
// required field or unknown verdict fails with ErrMalformedResponse; no
// partial result is returned.
func DecodeJSON(body string) (Result, error) {
	var w wireResult
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch {
	case w.RiskScore == nil:
		return Result{}, missing("riskScore")
	case w.Verdict == nil:
		return Result{}, missing("verdict")
	case w.RedFlags == nil:
		return Result{}, missing("redFlags")
	case w.Analysis == nil:
		return Result{}, missing("analysis")
	case w.Recommendations == nil:
		return Result{}, missing("recommendations")
	}

	verdict, ok := ParseVerdict(*w.Verdict)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown verdict %q", ErrMalformedResponse, *w.Verdict)
	}

	res := Result{
		RiskScore:       clampScore(int(math.Round(*w.RiskScore))),
		Verdict:         verdict,
		RedFlags:        cleanRedFlags(*w.RedFlags),
		Analysis:        *w.Analysis,
		Recommendations: *w.Recommendations,
		Transcript:      nonEmpty(w.Transcript),
		OCRText:         nonEmpty(w.OCRText),
	}
	if res.Recommendations == nil {
		res.Recommendations = []string{}
	}
	return res, nil
}

// cleanRedFlags drops entries without a flag and fills missing explanations,
// the same way the text grammar treats them.
func cleanRedFlags(in []RedFlag) []RedFlag {
	out := make([]RedFlag, 0, len(in))
	for _, f := range in {
		f.Flag = strings.TrimSpace(f.Flag)
		if f.Flag == "" {
			continue
		}
		f.Explanation = strings.TrimSpace(f.Explanation)
		if f.Explanation == "" {
			f.Explanation = DefaultExplanation
		}
		out = append(out, f)
	}
	return out
}

func missing(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedResponse, field)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
