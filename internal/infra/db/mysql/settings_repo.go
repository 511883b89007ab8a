package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
)

type ThresholdRepository struct {
	db *sql.DB
}

func NewThresholdRepository(db *sql.DB) *ThresholdRepository {
	return &ThresholdRepository{db: db}
}

func (r *ThresholdRepository) Load(ctx context.Context, tenant string) (fraud.RiskThresholds, bool, error) {
	const q = `SELECT low, medium, high FROM fraud_thresholds WHERE tenant_id=? LIMIT 1;`
	var th fraud.RiskThresholds
	err := r.db.QueryRowContext(ctx, q, tenant).Scan(&th.Low, &th.Medium, &th.High)
	if errors.Is(err, sql.ErrNoRows) {
		return fraud.RiskThresholds{}, false, nil
	}
	if err != nil {
		return fraud.RiskThresholds{}, false, err
	}
	return th, true, nil
}

func (r *ThresholdRepository) Save(ctx context.Context, tenant string, th fraud.RiskThresholds) error {
	const q = `
INSERT INTO fraud_thresholds (tenant_id, low, medium, high, updated_at)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  low=VALUES(low), medium=VALUES(medium), high=VALUES(high), updated_at=VALUES(updated_at);
`
	_, err := r.db.ExecContext(ctx, q, tenant, th.Low, th.Medium, th.High, time.Now())
	return err
}
