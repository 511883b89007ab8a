package fraud

import (
	"regexp"
	"strconv"
	"strings"
)

// Defaults substituted by ParseText when a field is missing.
const (
	DefaultRiskScore      = 50
	DefaultVerdict        = VerdictSuspicious
	DefaultExplanation    = "Potential fraud indicator."
	DefaultRecommendation = "Verify independently"
	notAvailable          = "N/A"
	analysisMarker        = "ANALYSIS:"
)

// SentinelRedFlag stands in when the reply has no RED_FLAGS line at all.
var SentinelRedFlag = RedFlag{Flag: "Potential Unknown Risk", Explanation: "Manual review recommended."}

var (
	riskScoreRe       = regexp.MustCompile(`(?i)RISK_SCORE:\s*(\d+)`)
	verdictRe         = regexp.MustCompile(`(?i)VERDICT:\s*(Safe|Low Risk|Suspicious|High Risk|Critical)`)
	redFlagsRe        = regexp.MustCompile(`(?i)RED_FLAGS:\s*(.*)`)
	recommendationsRe = regexp.MustCompile(`(?i)RECOMMENDATIONS:\s*(.*)`)
	transcriptRe      = regexp.MustCompile(`(?i)TRANSCRIPT:\s*(.*)`)
	ocrTextRe         = regexp.MustCompile(`(?i)OCR_TEXT:\s*(.*)`)
)

// ParseText reads the delimited layout used when web search is enabled:
//
//	RISK_SCORE: <integer>
//	VERDICT: <verdict>
//	RED_FLAGS: <flag> - <explanation> | ...
//	RECOMMENDATIONS: <rec>|<rec>|...
//	TRANSCRIPT: <text or N/A>
//	OCR_TEXT: <text or N/A>
//	ANALYSIS: <free text to end of message>
//
// Fields are matched independently and in any order, except ANALYSIS which is
// everything after the first "ANALYSIS:" marker, wherever it appears. Parsing
// never fails; a missing field degrades to its default.
func ParseText(raw string, sources []Source) Result {
	res := Result{
		RiskScore:       DefaultRiskScore,
		Verdict:         DefaultVerdict,
		RedFlags:        parseRedFlags(raw),
		Recommendations: parseRecommendations(raw),
		Transcript:      optionalField(transcriptRe, raw),
		OCRText:         optionalField(ocrTextRe, raw),
		Analysis:        raw,
	}

	if m := riskScoreRe.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			res.RiskScore = clampScore(n)
		} else {
			// only overflow can fail here; the digits still mean "very high"
			res.RiskScore = 100
		}
	}
	if m := verdictRe.FindStringSubmatch(raw); m != nil {
		if v, ok := ParseVerdict(m[1]); ok {
			res.Verdict = v
		}
	}
	if i := strings.Index(raw, analysisMarker); i >= 0 {
		res.Analysis = strings.TrimSpace(raw[i+len(analysisMarker):])
	}
	if len(sources) > 0 {
		res.Sources = sources
	}
	return res
}

func parseRedFlags(raw string) []RedFlag {
	m := redFlagsRe.FindStringSubmatch(raw)
	if m == nil {
		return []RedFlag{SentinelRedFlag}
	}
	flags := []RedFlag{}
	for _, entry := range strings.Split(m[1], "|") {
		var f RedFlag
		if parts := strings.Split(entry, " - "); len(parts) >= 2 {
			f = RedFlag{
				Flag:        strings.TrimSpace(parts[0]),
				Explanation: strings.TrimSpace(strings.Join(parts[1:], " - ")),
			}
		} else {
			f = RedFlag{Flag: strings.TrimSpace(entry), Explanation: DefaultExplanation}
		}
		if f.Flag != "" {
			flags = append(flags, f)
		}
	}
	return flags
}

func parseRecommendations(raw string) []string {
	m := recommendationsRe.FindStringSubmatch(raw)
	if m == nil {
		return []string{DefaultRecommendation}
	}
	recs := []string{}
	for _, r := range strings.Split(m[1], "|") {
		if r = strings.TrimSpace(r); r != "" {
			recs = append(recs, r)
		}
	}
	return recs
}

func optionalField(re *regexp.Regexp, raw string) *string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == notAvailable {
		return nil
	}
	return &v
}
