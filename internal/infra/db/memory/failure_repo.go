package memory

import (
	"context"
	"sync"

	"github.com/bryanwahyu/fraudshield/internal/domain/failures"
)

// maxFailures caps the in-memory log; the oldest entries are dropped first.
const maxFailures = 1000

type FailureRepository struct {
	mu     sync.Mutex
	nextID int64
	items  []*failures.Failure
}

func NewFailureRepository() *FailureRepository { return &FailureRepository{} }

func (r *FailureRepository) Save(_ context.Context, f *failures.Failure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	f.ID = r.nextID
	cp := *f
	r.items = append(r.items, &cp)
	if len(r.items) > maxFailures {
		r.items = r.items[len(r.items)-maxFailures:]
	}
	return nil
}

// ListRecent returns newest first.
func (r *FailureRepository) ListRecent(_ context.Context, tenant string, limit int) ([]*failures.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*failures.Failure{}
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		if r.items[i].TenantID == tenant {
			cp := *r.items[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
