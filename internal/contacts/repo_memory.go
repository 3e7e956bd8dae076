package contacts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory contact repository for tests. It enforces the
// same phone_number uniqueness the Postgres schema does.
type MemoryRepo struct {
	mu       sync.Mutex
	rows     map[string]Contact // keyed by id
	InsertFn func(c Contact) error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: map[string]Contact{}}
}

func (r *MemoryRepo) GetByPhone(_ context.Context, phoneNumber string) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.PhoneNumber == phoneNumber {
			return c, nil
		}
	}
	return Contact{}, ErrNotFound
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) Insert(_ context.Context, c Contact) error {
	if r.InsertFn != nil {
		if err := r.InsertFn(c); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.PhoneNumber == c.PhoneNumber {
			return ErrDuplicate
		}
	}
	r.rows[c.ID] = c
	return nil
}

func (r *MemoryRepo) List(_ context.Context, f ListFilter) ([]Contact, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]Contact, 0)
	for _, c := range r.rows {
		if f.Search != "" && !matchesSearch(c, f.Search) {
			continue
		}
		if f.Tag != "" && !hasTag(c, f.Tag) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		return lastContactAfter(matched[i], matched[j])
	})

	total := len(matched)
	if f.Offset >= len(matched) {
		return []Contact{}, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (r *MemoryRepo) RecordActivity(_ context.Context, id string, kind ActivityKind, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	if kind == ActivityCall {
		c.CallCount++
	} else {
		c.MessageCount++
	}
	t := at
	c.LastContact = &t
	c.UpdatedAt = at
	r.rows[id] = c
	return nil
}

// Count returns the number of stored rows. Test helper.
func (r *MemoryRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func matchesSearch(c Contact, search string) bool {
	s := strings.ToLower(search)
	if c.Name != nil && strings.Contains(strings.ToLower(*c.Name), s) {
		return true
	}
	if strings.Contains(strings.ToLower(c.PhoneNumber), s) {
		return true
	}
	if c.Email != nil && strings.Contains(strings.ToLower(*c.Email), s) {
		return true
	}
	return false
}

func hasTag(c Contact, tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// lastContactAfter orders by last_contact descending, nulls last.
func lastContactAfter(a, b Contact) bool {
	switch {
	case a.LastContact == nil && b.LastContact == nil:
		return a.ID < b.ID
	case a.LastContact == nil:
		return false
	case b.LastContact == nil:
		return true
	default:
		return a.LastContact.After(*b.LastContact)
	}
}
