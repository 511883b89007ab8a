package settings

import (
	"context"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
)

// ThresholdStore persists per-tenant risk thresholds.
type ThresholdStore interface {
	// Load returns ok=false when the tenant never saved thresholds.
	Load(ctx context.Context, tenant string) (th fraud.RiskThresholds, ok bool, err error)
	Save(ctx context.Context, tenant string, th fraud.RiskThresholds) error
}
