package infra

import (
	"testing"
	"time"

	"interactions-gateway/middleware/ratelimit/domain"
)

func TestWindowStore_AdmitsUpToLimitThenRejects(t *testing.T) {
	s := NewWindowStore()
	now := time.Unix(1_700_000_000, 0)

	for i := 1; i <= 5; i++ {
		rec, ok := s.Hit("k", 5, time.Minute, now)
		if !ok {
			t.Fatalf("expected hit %d to be admitted", i)
		}
		if rec.Count != i {
			t.Fatalf("expected count %d, got %d", i, rec.Count)
		}
	}

	rec, ok := s.Hit("k", 5, time.Minute, now)
	if ok {
		t.Fatalf("expected 6th hit to be rejected")
	}
	// rejeição não incrementa
	if rec.Count != 5 {
		t.Fatalf("expected count to stay at 5, got %d", rec.Count)
	}
	if !rec.ResetAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("expected resetAt=now+1m, got %s", rec.ResetAt)
	}
}

func TestWindowStore_ResetsAtWindowBoundary(t *testing.T) {
	s := NewWindowStore()
	now := time.Unix(1_700_000_000, 0)

	for i := 0; i < 6; i++ {
		s.Hit("k", 5, time.Minute, now)
	}

	// exatamente em resetAt a janela já reinicia (now >= resetAt)
	rec, ok := s.Hit("k", 5, time.Minute, now.Add(time.Minute))
	if !ok {
		t.Fatalf("expected admission once the window elapsed")
	}
	if rec.Count != 1 {
		t.Fatalf("expected count reset to 1, got %d", rec.Count)
	}
	if !rec.ResetAt.Equal(now.Add(2 * time.Minute)) {
		t.Fatalf("expected new window to end at now+2m, got %s", rec.ResetAt)
	}
}

func TestWindowStore_KeysAreIndependent(t *testing.T) {
	s := NewWindowStore()
	now := time.Now()

	for i := 0; i < 5; i++ {
		s.Hit(domain.Key("a"), 5, time.Minute, now)
	}
	if _, ok := s.Hit(domain.Key("b"), 5, time.Minute, now); !ok {
		t.Fatalf("expected key b to be admitted")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", s.Len())
	}
}
