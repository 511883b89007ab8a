package settings

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
	domain "github.com/bryanwahyu/fraudshield/internal/domain/settings"
)

// Service manages per-tenant risk thresholds
type Service struct {
	Store    domain.ThresholdStore
	Defaults fraud.RiskThresholds
}

// Thresholds returns the tenant's saved thresholds, or the defaults when none
// were saved or no store is configured.
func (s *Service) Thresholds(ctx context.Context, tenant string) (fraud.RiskThresholds, error) {
	if s.Store == nil {
		return s.defaults(), nil
	}
	th, ok, err := s.Store.Load(ctx, tenant)
	if err != nil {
		return fraud.RiskThresholds{}, fmt.Errorf("load thresholds: %w", err)
	}
	if !ok {
		return s.defaults(), nil
	}
	return th, nil
}

// Update validates and persists the tenant's thresholds. Out-of-order values
// are rejected with fraud.ErrInvalidThresholds and nothing is saved.
func (s *Service) Update(ctx context.Context, tenant string, th fraud.RiskThresholds) error {
	if err := th.Validate(); err != nil {
		return err
	}
	if s.Store == nil {
		return nil
	}
	if err := s.Store.Save(ctx, tenant, th); err != nil {
		return fmt.Errorf("save thresholds: %w", err)
	}
	log.WithFields(log.Fields{
		"tenant": tenant,
		"low":    th.Low,
		"medium": th.Medium,
		"high":   th.High,
	}).Info("thresholds updated")
	return nil
}

// Level buckets score with the tenant's thresholds.
func (s *Service) Level(ctx context.Context, tenant string, score int) (fraud.RiskLevel, fraud.RiskThresholds, error) {
	th, err := s.Thresholds(ctx, tenant)
	if err != nil {
		return "", th, err
	}
	return th.Bucket(score), th, nil
}

func (s *Service) defaults() fraud.RiskThresholds {
	if s.Defaults.Validate() != nil {
		return fraud.DefaultThresholds
	}
	return s.Defaults
}
