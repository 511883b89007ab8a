package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bryanwahyu/fraudshield/internal/domain/history"
)

// HistoryRepository keeps records in process memory. Used when no database
// is configured and in tests.
type HistoryRepository struct {
	mu   sync.RWMutex
	data map[string][]*history.Record
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{data: map[string][]*history.Record{}}
}

func (r *HistoryRepository) Save(_ context.Context, rec *history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	list := r.data[rec.TenantID]
	for i, existing := range list {
		if existing.ID == rec.ID {
			list[i] = &cp
			return nil
		}
	}
	r.data[rec.TenantID] = append(list, &cp)
	return nil
}

func (r *HistoryRepository) Get(_ context.Context, tenant string, id history.RecordID) (*history.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.data[tenant] {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, history.ErrNotFound
}

// Paginate returns a page ordered by created_at desc, id desc.
func (r *HistoryRepository) Paginate(_ context.Context, tenant string, page, pageSize int) ([]*history.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	r.mu.RLock()
	sorted := make([]*history.Record, len(r.data[tenant]))
	copy(sorted, r.data[tenant])
	r.mu.RUnlock()

	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	out := []*history.Record{}
	if page-1 > len(sorted)/pageSize {
		return out, nil
	}
	start := (page - 1) * pageSize
	if start >= len(sorted) {
		return out, nil
	}
	end := min(start+pageSize, len(sorted))
	for _, rec := range sorted[start:end] {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *HistoryRepository) Clear(_ context.Context, tenant string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.data[tenant]))
	delete(r.data, tenant)
	return n, nil
}
