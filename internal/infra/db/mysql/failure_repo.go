package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bryanwahyu/fraudshield/internal/domain/failures"
)

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Save(ctx context.Context, f *failures.Failure) error {
	const q = `
INSERT INTO fraud_failures
  (tenant_id, phase, protocol, mime_type, message, created_at)
VALUES (?,?,?,?,?,?)
`
	msg := f.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := r.db.ExecContext(ctx, q,
		stringOrDash(f.TenantID), stringOrDash(string(f.Phase)), stringOrDash(f.Protocol),
		stringOrDash(f.MIMEType), msg, created)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		f.ID = id
	}
	return nil
}

func (r *FailureRepository) ListRecent(ctx context.Context, tenant string, limit int) ([]*failures.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, phase, protocol, mime_type, message, created_at
FROM fraud_failures
WHERE tenant_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*failures.Failure{}
	for rows.Next() {
		var f failures.Failure
		var phase string
		if err := rows.Scan(&f.ID, &f.TenantID, &phase, &f.Protocol, &f.MIMEType, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Phase = failures.Phase(phase)
		f.Protocol = dashToEmpty(f.Protocol)
		f.MIMEType = dashToEmpty(f.MIMEType)
		out = append(out, &f)
	}
	return out, rows.Err()
}
