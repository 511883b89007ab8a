package memory

import (
	"context"
	"sync"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
)

type ThresholdRepository struct {
	mu   sync.RWMutex
	data map[string]fraud.RiskThresholds
}

func NewThresholdRepository() *ThresholdRepository {
	return &ThresholdRepository{data: map[string]fraud.RiskThresholds{}}
}

func (r *ThresholdRepository) Load(_ context.Context, tenant string) (fraud.RiskThresholds, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	th, ok := r.data[tenant]
	return th, ok, nil
}

func (r *ThresholdRepository) Save(_ context.Context, tenant string, th fraud.RiskThresholds) error {
	r.mu.Lock()
	r.data[tenant] = th
	r.mu.Unlock()
	return nil
}
