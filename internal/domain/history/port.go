package history

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record matches.
var ErrNotFound = errors.New("history record not found")

// Repository port for persisting and querying analysis history
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, tenant string, id RecordID) (*Record, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Record, error)
	Clear(ctx context.Context, tenant string) (int64, error)
}
