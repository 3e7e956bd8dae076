package calls

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory call repository for tests.
type MemoryRepo struct {
	mu   sync.Mutex
	rows []Call

	// FailInsert forces Insert to error, for store-failure paths.
	FailInsert error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Insert(_ context.Context, c Call) error {
	if r.FailInsert != nil {
		return r.FailInsert
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, c)
	return nil
}

func (r *MemoryRepo) List(_ context.Context, f ListFilter) ([]Call, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]Call, 0)
	for _, c := range r.rows {
		if f.ContactID != "" && (c.ContactID == nil || *c.ContactID != f.ContactID) {
			continue
		}
		if f.PhoneNumber != "" && c.PhoneNumber != f.PhoneNumber {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch {
		case a.StartedAt == nil && b.StartedAt == nil:
			return a.ID < b.ID
		case a.StartedAt == nil:
			return false
		case b.StartedAt == nil:
			return true
		default:
			return a.StartedAt.After(*b.StartedAt)
		}
	})

	total := len(matched)
	if f.Offset >= len(matched) {
		return []Call{}, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

// All returns every stored row. Test helper.
func (r *MemoryRepo) All() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.rows))
	copy(out, r.rows)
	return out
}
