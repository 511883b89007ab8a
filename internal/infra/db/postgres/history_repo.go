package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
	"github.com/bryanwahyu/fraudshield/internal/domain/history"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Save inserts or updates a history record
func (r *HistoryRepository) Save(ctx context.Context, rec *history.Record) error {
	const q = `
INSERT INTO fraud_history
  (id, tenant_id, analysis_type, verdict, risk_score, attachment_url, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  verdict=EXCLUDED.verdict,
  risk_score=EXCLUDED.risk_score,
  attachment_url=EXCLUDED.attachment_url,
  result_json=EXCLUDED.result_json;
`
	result, err := encodeResult(rec.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = r.db.ExecContext(ctx, q,
		string(rec.ID), stringOrDash(rec.TenantID), string(rec.Type), string(rec.Verdict),
		rec.RiskScore, stringOrDash(rec.AttachmentURL), result, createdAt)
	return err
}

const selectHistory = `
SELECT id, tenant_id, analysis_type, verdict, risk_score, attachment_url, result_json, created_at
FROM fraud_history`

func (r *HistoryRepository) Get(ctx context.Context, tenant string, id history.RecordID) (*history.Record, error) {
	row := r.db.QueryRowContext(ctx, selectHistory+`
WHERE tenant_id=$1 AND id=$2
LIMIT 1;`, tenant, string(id))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, history.ErrNotFound
	}
	return rec, err
}

// Paginate returns a page of history records ordered by created_at desc
func (r *HistoryRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*history.Record, error) {
	limit, offset := pageBounds(page, pageSize)
	rows, err := r.db.QueryContext(ctx, selectHistory+`
WHERE tenant_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;`, tenant, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*history.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *HistoryRepository) Clear(ctx context.Context, tenant string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fraud_history WHERE tenant_id=$1`, tenant)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*history.Record, error) {
	var (
		rec                            history.Record
		id, typ, verdict, url, payload string
		created                        time.Time
	)
	if err := s.Scan(&id, &rec.TenantID, &typ, &verdict, &rec.RiskScore, &url, &payload, &created); err != nil {
		return nil, err
	}
	res, err := decodeResult(payload)
	if err != nil {
		return nil, fmt.Errorf("decode result %s: %w", id, err)
	}
	rec.ID = history.RecordID(id)
	rec.Type = history.AnalysisType(typ)
	rec.Verdict = fraud.Verdict(verdict)
	rec.AttachmentURL = dashToEmpty(url)
	rec.Result = res
	rec.CreatedAt = created
	return &rec, nil
}
