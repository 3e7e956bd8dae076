package calls

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

func TestRecordOutbound(t *testing.T) {
	repo := NewMemoryRepo()
	s := testService(repo)

	c, err := s.RecordOutbound(context.Background(), "contact-1", "+14155550100", "CA123")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if c.Direction != DirectionOutbound || c.Status != StatusRinging {
		t.Fatalf("unexpected direction/status: %s/%s", c.Direction, c.Status)
	}
	if c.ContactID == nil || *c.ContactID != "contact-1" {
		t.Fatalf("unexpected contact_id: %v", c.ContactID)
	}
	if c.ExternalID == nil || *c.ExternalID != "CA123" {
		t.Fatalf("unexpected external_id: %v", c.ExternalID)
	}
	if c.StartedAt == nil {
		t.Fatalf("expected started_at on outbound call")
	}
}

func TestRecordOutbound_ContactOptional(t *testing.T) {
	s := testService(NewMemoryRepo())
	c, err := s.RecordOutbound(context.Background(), "", "+14155550100", "CA123")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if c.ContactID != nil {
		t.Fatalf("expected nil contact_id, got %v", *c.ContactID)
	}
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	s := testService(NewMemoryRepo())
	if _, _, err := s.List(context.Background(), ListFilter{Status: "sleeping"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestList_FiltersAndPaginates(t *testing.T) {
	repo := NewMemoryRepo()
	s := testService(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.RecordOutbound(ctx, "contact-1", "+14155550100", ""); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := s.RecordOutbound(ctx, "contact-2", "+14155550199", ""); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	rows, total, err := s.List(ctx, ListFilter{ContactID: "contact-1", Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(rows) != 2 {
		t.Fatalf("expected total 5 and 2 rows, got %d and %d", total, len(rows))
	}

	rows, total, err = s.List(ctx, ListFilter{Status: string(StatusRinging), PhoneNumber: "+14155550199"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected single filtered row, got total=%d", total)
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, st := range []Status{StatusCompleted, StatusFailed, StatusNoAnswer, StatusBusy} {
		if !st.Terminal() {
			t.Fatalf("%s should be terminal", st)
		}
	}
	for _, st := range []Status{StatusRinging, StatusInProgress} {
		if st.Terminal() {
			t.Fatalf("%s should not be terminal", st)
		}
	}
}
