package notice

import (
	"context"
	"errors"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

type tick struct{ t time.Time }

func (c *tick) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func TestDraftNormalize(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantErr bool
		wantPri string
	}{
		{"defaults priority", Draft{Title: "Water off", Content: "2-4pm"}, false, PriorityLow},
		{"uppercase priority", Draft{Title: "a", Content: "b", Priority: " HIGH "}, false, PriorityHigh},
		{"missing title", Draft{Content: "b"}, true, ""},
		{"blank content", Draft{Title: "a", Content: "   "}, true, ""},
		{"bad priority", Draft{Title: "a", Content: "b", Priority: "urgent"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Normalize()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("err = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.draft.Priority != tt.wantPri {
				t.Errorf("priority = %q, want %q", tt.draft.Priority, tt.wantPri)
			}
		})
	}
}

func TestPatchNormalize(t *testing.T) {
	empty := Patch{}
	if err := empty.Normalize(); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty patch err = %v", err)
	}
	blank := Patch{Title: ptr("  ")}
	if err := blank.Normalize(); !errors.Is(err, ErrInvalid) {
		t.Errorf("blank title err = %v", err)
	}
	ok := Patch{Active: ptr(false)}
	if err := ok.Normalize(); err != nil {
		t.Errorf("active-only patch: %v", err)
	}
}

func TestMemoryStore_ActiveOrdering(t *testing.T) {
	ctx := context.Background()
	clock := &tick{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	s := NewMemoryStore().WithClock(clock.now)

	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	mustCreate := func(d Draft) Notice {
		t.Helper()
		n, err := s.Create(ctx, d)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		return n
	}
	lowOld := mustCreate(Draft{Title: "low old", Content: "x"})
	high := mustCreate(Draft{Title: "high", Content: "x", Priority: "high", ExpiresAt: &future})
	mustCreate(Draft{Title: "expired", Content: "x", Priority: "high", ExpiresAt: &past})
	mustCreate(Draft{Title: "inactive", Content: "x", Active: ptr(false)})
	med := mustCreate(Draft{Title: "medium", Content: "x", Priority: "medium"})
	lowNew := mustCreate(Draft{Title: "low new", Content: "x"})

	got, err := s.Active(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{high.ID, med.ID, lowNew.ID, lowOld.ID}
	if len(got) != len(want) {
		t.Fatalf("got %d notices, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("position %d = %q, want %q", i, got[i].Title, want[i])
		}
	}
}

func TestMemoryStore_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	n, err := s.Create(ctx, Draft{Title: "Elevator", Content: "Out of service", ExpiresAt: ptr(time.Now().Add(time.Hour))})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.Update(ctx, n.ID, Patch{Priority: ptr("high"), ClearExpiry: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Priority != PriorityHigh || updated.ExpiresAt != nil || updated.Title != "Elevator" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := s.Update(ctx, "missing", Patch{Active: ptr(true)}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}
	if err := s.Delete(ctx, n.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if c, _ := s.Count(ctx); c != 0 {
		t.Errorf("count = %d", c)
	}
}

func TestMemoryStore_CreateInvalidLeavesCount(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if _, err := s.Create(ctx, Draft{Title: "only title"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
	if c, _ := s.Count(ctx); c != 0 {
		t.Errorf("count = %d after invalid create", c)
	}
}
