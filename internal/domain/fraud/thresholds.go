package fraud

// RiskThresholds are the three cut points used to bucket a risk score for
// display. The analyzer itself never consults them.
type RiskThresholds struct {
	Low    int `json:"low" yaml:"low"`
	Medium int `json:"medium" yaml:"medium"`
	High   int `json:"high" yaml:"high"`
}

// DefaultThresholds matches the colour bands of the result view.
var DefaultThresholds = RiskThresholds{Low: 20, Medium: 50, High: 80}

// Validate enforces 0 < low < medium < high < 100.
func (t RiskThresholds) Validate() error {
	if t.Low <= 0 || t.Low >= t.Medium || t.Medium >= t.High || t.High >= 100 {
		return ErrInvalidThresholds
	}
	return nil
}

// RiskLevel is the presentation bucket of a score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Bucket places score in 0..low, low+1..medium, medium+1..high or above.
func (t RiskThresholds) Bucket(score int) RiskLevel {
	switch {
	case score <= t.Low:
		return RiskLow
	case score <= t.Medium:
		return RiskMedium
	case score <= t.High:
		return RiskHigh
	default:
		return RiskCritical
	}
}
