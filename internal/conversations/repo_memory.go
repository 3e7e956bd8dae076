package conversations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory conversation repository for tests. It enforces
// the same (phone_number, channel) uniqueness the Postgres schema does.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]Conversation
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: map[string]Conversation{}}
}

func (r *MemoryRepo) GetByPhoneAndChannel(_ context.Context, phoneNumber, channel string) (Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.PhoneNumber == phoneNumber && c.Channel == channel {
			return c, nil
		}
	}
	return Conversation{}, ErrNotFound
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) Insert(_ context.Context, c Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.PhoneNumber == c.PhoneNumber && existing.Channel == c.Channel {
			return ErrDuplicate
		}
	}
	r.rows[c.ID] = c
	return nil
}

func (r *MemoryRepo) List(_ context.Context, f ListFilter) ([]Conversation, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]Conversation, 0)
	for _, c := range r.rows {
		if f.Channel != "" && c.Channel != f.Channel {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch {
		case a.LastMessageAt == nil && b.LastMessageAt == nil:
			return a.ID < b.ID
		case a.LastMessageAt == nil:
			return false
		case b.LastMessageAt == nil:
			return true
		default:
			return a.LastMessageAt.After(*b.LastMessageAt)
		}
	})

	total := len(matched)
	if f.Offset >= len(matched) {
		return []Conversation{}, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (r *MemoryRepo) TouchMessage(_ context.Context, id, body string, at time.Time, inbound bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	b, t := body, at
	c.LastMessage = &b
	c.LastMessageAt = &t
	c.MessageCount++
	if inbound {
		c.UnreadCount++
	}
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
