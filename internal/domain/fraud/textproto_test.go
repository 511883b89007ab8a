package fraud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groundedReply = `RISK_SCORE: 72
VERDICT: High Risk
RED_FLAGS: Urgency - creates time pressure | Fake Domain - mismatched URL
RECOMMENDATIONS: Do not click the link|Verify sender identity
TRANSCRIPT: N/A
OCR_TEXT: N/A
ANALYSIS: This message uses classic phishing tactics.`

func TestParseText_FullReply(t *testing.T) {
	res := ParseText(groundedReply, nil)

	assert.Equal(t, 72, res.RiskScore)
	assert.Equal(t, VerdictHighRisk, res.Verdict)
	assert.Equal(t, []RedFlag{
		{Flag: "Urgency", Explanation: "creates time pressure"},
		{Flag: "Fake Domain", Explanation: "mismatched URL"},
	}, res.RedFlags)
	assert.Equal(t, []string{"Do not click the link", "Verify sender identity"}, res.Recommendations)
	assert.Nil(t, res.Transcript)
	assert.Nil(t, res.OCRText)
	assert.Equal(t, "This message uses classic phishing tactics.", res.Analysis)
	assert.Nil(t, res.Sources)
}

func TestParseText_MissingRedFlagsUsesSentinel(t *testing.T) {
	res := ParseText("RISK_SCORE: 10\nVERDICT: Safe\nANALYSIS: fine", nil)
	assert.Equal(t, []RedFlag{{Flag: "Potential Unknown Risk", Explanation: "Manual review recommended."}}, res.RedFlags)
}

func TestParseText_NoAnalysisMarkerKeepsWholeText(t *testing.T) {
	raw := "VERDICT: critical\nThe model forgot the layout entirely."
	res := ParseText(raw, nil)
	assert.Equal(t, raw, res.Analysis)
	assert.Equal(t, VerdictCritical, res.Verdict)
}

func TestParseText_Defaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing score", raw: "VERDICT: Safe"},
		{name: "non numeric score", raw: "RISK_SCORE: high\nVERDICT: nonsense"},
		{name: "empty", raw: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseText(tt.raw, nil)
			assert.Equal(t, DefaultRiskScore, res.RiskScore)
			assert.Equal(t, []string{DefaultRecommendation}, res.Recommendations)
			assert.Equal(t, []RedFlag{SentinelRedFlag}, res.RedFlags)
		})
	}
	assert.Equal(t, VerdictSuspicious, ParseText("VERDICT: nonsense", nil).Verdict)
}

func TestParseText_RedFlagEntries(t *testing.T) {
	res := ParseText("RED_FLAGS: Spoofing - link - looks real |  Bare flag  | | - no name\nANALYSIS: x", nil)
	require.Len(t, res.RedFlags, 2)
	assert.Equal(t, RedFlag{Flag: "Spoofing", Explanation: "link - looks real"}, res.RedFlags[0])
	assert.Equal(t, RedFlag{Flag: "Bare flag", Explanation: DefaultExplanation}, res.RedFlags[1])
}

func TestParseText_EmptyRedFlagsLineIsEmptyNotNil(t *testing.T) {
	res := ParseText("RED_FLAGS: |\nANALYSIS: x", nil)
	assert.NotNil(t, res.RedFlags)
	assert.Empty(t, res.RedFlags)
}

func TestParseText_OutOfOrderFieldsAndCase(t *testing.T) {
	raw := "ocr_text: WIN $1000 NOW\nverdict: low risk\nrisk_score: 15\nTRANSCRIPT: hello there \nrecommendations: Ignore it | |Report\nANALYSIS:   Mostly harmless.  "
	res := ParseText(raw, nil)
	assert.Equal(t, 15, res.RiskScore)
	assert.Equal(t, VerdictLowRisk, res.Verdict)
	require.NotNil(t, res.OCRText)
	assert.Equal(t, "WIN $1000 NOW", *res.OCRText)
	require.NotNil(t, res.Transcript)
	assert.Equal(t, "hello there", *res.Transcript)
	assert.Equal(t, []string{"Ignore it", "Report"}, res.Recommendations)
	assert.Equal(t, "Mostly harmless.", res.Analysis)
}

func TestParseText_AnalysisMarkerFirstOccurrenceWins(t *testing.T) {
	raw := "RED_FLAGS: Odd - mentions ANALYSIS: inline\nANALYSIS: real analysis"
	res := ParseText(raw, nil)
	assert.Equal(t, "inline\nANALYSIS: real analysis", res.Analysis)
}

func TestParseText_ScoreClamped(t *testing.T) {
	assert.Equal(t, 100, ParseText("RISK_SCORE: 250", nil).RiskScore)
	assert.Equal(t, 100, ParseText("RISK_SCORE: 99999999999999999999999", nil).RiskScore)
}

func TestParseText_AttachesSources(t *testing.T) {
	src := []Source{{URI: "https://example.com/scam", Title: "Scam alert"}}
	res := ParseText(groundedReply, src)
	assert.Equal(t, src, res.Sources)

	assert.Nil(t, ParseText(groundedReply, []Source{}).Sources)
}

func FuzzParseText(f *testing.F) {
	f.Add(groundedReply)
	f.Add("RED_FLAGS:\nRECOMMENDATIONS:")
	f.Add("ANALYSIS:")
	f.Add("RISK_SCORE: 0000000000000000000000000012 VERDICT: SAFE")
	f.Fuzz(func(t *testing.T, raw string) {
		res := ParseText(raw, nil)
		if res.RedFlags == nil || res.Recommendations == nil {
			t.Fatalf("nil collection for %q", raw)
		}
		if res.RiskScore < 0 || res.RiskScore > 100 {
			t.Fatalf("score out of range: %d", res.RiskScore)
		}
		if _, ok := ParseVerdict(string(res.Verdict)); !ok {
			t.Fatalf("unknown verdict %q", res.Verdict)
		}
		for _, rf := range res.RedFlags {
			if rf.Flag == "" {
				t.Fatalf("empty flag kept for %q", raw)
			}
		}
	})
}
