package messages

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory message repository for tests.
type MemoryRepo struct {
	mu   sync.Mutex
	rows []Message

	// FailInsert forces Insert to error, for store-failure paths.
	FailInsert error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Insert(_ context.Context, m Message) error {
	if r.FailInsert != nil {
		return r.FailInsert
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.ID == m.ID {
			return errors.New("duplicate message id")
		}
	}
	r.rows = append(r.rows, m)
	return nil
}

func (r *MemoryRepo) List(_ context.Context, f ListFilter) ([]Message, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]Message, 0)
	for _, m := range r.rows {
		switch {
		case f.ConversationID != "":
			if m.ConversationID != f.ConversationID {
				continue
			}
		case f.ContactID != "":
			if m.ContactID != f.ContactID {
				continue
			}
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if f.Offset >= len(matched) {
		return []Message{}, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

// All returns every stored row. Test helper.
func (r *MemoryRepo) All() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.rows))
	copy(out, r.rows)
	return out
}
