package audit

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestAppend_DefaultsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.clock = func() time.Time { return time.Unix(1700000000, 0) }

	err := svc.Append(context.Background(), Event{
		Intent:         "order_summary",
		IdentifierKind: "order_id",
		Identifier:     "1234567",
		Outcome:        "found",
		HTTPStatus:     200,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	events, err := repo.Recent(context.Background(), 10)
	if err != nil || len(events) != 1 {
		t.Fatalf("expected one event, got %d %v", len(events), err)
	}
	e := events[0]
	if e.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !e.CreatedAt.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Fatalf("expected clock timestamp, got %v", e.CreatedAt)
	}
}

func TestAppend_RejectsIncompleteEvents(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.Append(context.Background(), Event{Outcome: "found"}); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if err := svc.Append(context.Background(), Event{Intent: "general"}); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestAppend_TruncatesLongQueries(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	err := svc.Append(context.Background(), Event{
		Intent:  "general",
		Outcome: "generated",
		Query:   strings.Repeat("x", 2*maxQueryLen),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	events, _ := repo.Recent(context.Background(), 1)
	if len(events[0].Query) != maxQueryLen {
		t.Fatalf("expected truncated query, got %d chars", len(events[0].Query))
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	for _, id := range []string{"a", "b", "c"} {
		if err := svc.Append(context.Background(), Event{ID: id, Intent: "general", Outcome: "generated"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := svc.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(events) != 2 || events[0].ID != "c" || events[1].ID != "b" {
		t.Fatalf("expected newest first, got %+v", events)
	}
}
