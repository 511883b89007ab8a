package failures

import "context"

// Repository defines persistence for analysis failures
type Repository interface {
	Save(ctx context.Context, f *Failure) error
	ListRecent(ctx context.Context, tenant string, limit int) ([]*Failure, error)
}
