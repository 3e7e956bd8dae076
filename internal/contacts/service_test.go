package contacts

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testService(repo Repository) *Service {
	s := NewService(repo)
	s.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return s
}

func TestResolve_CreatesOnFirstSight(t *testing.T) {
	repo := NewMemoryRepo()
	s := testService(repo)

	c, err := s.Resolve(context.Background(), "+14155550100")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.ID == "" || c.PhoneNumber != "+14155550100" {
		t.Fatalf("unexpected contact: %+v", c)
	}
	if !c.AIEnabled {
		t.Fatalf("expected ai_enabled default true")
	}
	if repo.Count() != 1 {
		t.Fatalf("expected 1 row, got %d", repo.Count())
	}
}

func TestResolve_Idempotent(t *testing.T) {
	repo := NewMemoryRepo()
	s := testService(repo)
	ctx := context.Background()

	first, err := s.Resolve(ctx, "+14155550100")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := s.Resolve(ctx, "+14155550100")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same contact id, got %q and %q", first.ID, second.ID)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected exactly 1 row, got %d", repo.Count())
	}
}

func TestResolve_LosingRaceReReads(t *testing.T) {
	repo := NewMemoryRepo()
	s := testService(repo)
	ctx := context.Background()

	// Simulate a concurrent winner: between our not-found read and our insert,
	// another handler creates the row.
	raced := false
	repo.InsertFn = func(c Contact) error {
		if !raced {
			raced = true
			winner := Contact{ID: "winner", PhoneNumber: c.PhoneNumber, Tags: []string{}, AIEnabled: true}
			repo.rows[winner.ID] = winner
		}
		return nil
	}

	got, err := s.Resolve(ctx, "+14155550100")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != "winner" {
		t.Fatalf("expected winner's row, got %q", got.ID)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected converged single row, got %d", repo.Count())
	}
}

func TestResolve_RequiresPhone(t *testing.T) {
	s := testService(NewMemoryRepo())
	if _, err := s.Resolve(context.Background(), ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	s := testService(NewMemoryRepo())
	name := "Summer"
	c, err := s.Create(context.Background(), CreateInput{PhoneNumber: "+14155550100", Name: &name})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !c.AIEnabled || c.Favorited {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Tags == nil || len(c.Tags) != 0 {
		t.Fatalf("expected empty tags slice, got %#v", c.Tags)
	}
}

func TestCreate_DuplicatePhone(t *testing.T) {
	s := testService(NewMemoryRepo())
	ctx := context.Background()
	if _, err := s.Create(ctx, CreateInput{PhoneNumber: "+14155550100"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, CreateInput{PhoneNumber: "+14155550100"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestList_Pagination(t *testing.T) {
	repo := NewMemoryRepo()
	s := testService(repo)
	ctx := context.Background()

	for _, n := range []string{"+11111111111", "+12222222222", "+13333333333", "+14444444444", "+15555555555"} {
		if _, err := s.Resolve(ctx, n); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rows, total, err := s.List(ctx, ListFilter{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
}

func TestList_SearchAndTag(t *testing.T) {
	repo := NewMemoryRepo()
	s := testService(repo)
	ctx := context.Background()

	name := "Morty"
	if _, err := s.Create(ctx, CreateInput{PhoneNumber: "+14155550100", Name: &name, Tags: []string{"family"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, CreateInput{PhoneNumber: "+14155550101"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, total, err := s.List(ctx, ListFilter{Search: "morty"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].PhoneNumber != "+14155550100" {
		t.Fatalf("unexpected search result: total=%d rows=%+v", total, rows)
	}

	rows, total, err = s.List(ctx, ListFilter{Tag: "family"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("unexpected tag result: total=%d", total)
	}
}

func TestRecordActivity(t *testing.T) {
	repo := NewMemoryRepo()
	s := testService(repo)
	ctx := context.Background()

	c, _ := s.Resolve(ctx, "+14155550100")
	at := time.Unix(1700000100, 0).UTC()
	if err := s.RecordMessageActivity(ctx, c.ID, at); err != nil {
		t.Fatalf("record message: %v", err)
	}
	if err := s.RecordCallActivity(ctx, c.ID, at); err != nil {
		t.Fatalf("record call: %v", err)
	}

	got, _ := s.Get(ctx, c.ID)
	if got.MessageCount != 1 || got.CallCount != 1 {
		t.Fatalf("unexpected counters: %+v", got)
	}
	if got.LastContact == nil || !got.LastContact.Equal(at) {
		t.Fatalf("unexpected last_contact: %v", got.LastContact)
	}
}
