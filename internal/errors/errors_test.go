package errors

import (
	"errors"
	"testing"
	"time"
)

func TestActionFor(t *testing.T) {
	if ActionFor(CategoryRateLimited) != ActionWaitAndRetry {
		t.Error("expected rate-limited errors to wait and retry")
	}
	if ActionFor(CategoryAccessibilityDenied) != ActionReportToUser {
		t.Error("expected accessibility-denied errors to report to the user")
	}
	if ActionFor(CategoryFatal) != ActionReinitialize {
		t.Error("expected fatal errors to trigger reinitialization")
	}
}

func TestCategoryOf(t *testing.T) {
	wrapped := New(CategoryTimeout, "fuzzy_match", errors.New("deadline exceeded"))
	if CategoryOf(wrapped) != CategoryTimeout {
		t.Errorf("expected CategoryTimeout, got %v", CategoryOf(wrapped))
	}

	plain := errors.New("unrelated failure")
	if CategoryOf(plain) != CategoryFatal {
		t.Errorf("expected unrecognized errors to default to CategoryFatal, got %v", CategoryOf(plain))
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("root cause")
	wrapped := New(CategoryTransient, "click", base)

	if !errors.Is(wrapped, base) {
		t.Error("expected errors.Is to see through the wrapper")
	}
}

func TestRetryPolicyDelayBounded(t *testing.T) {
	p := DefaultRetryPolicy()

	for attempt := 1; attempt <= 10; attempt++ {
		d := p.Delay(attempt)
		if d < 0 || d > p.MaxDelay {
			t.Errorf("attempt %d: delay %v out of bounds [0, %v]", attempt, d, p.MaxDelay)
		}
	}
}

func TestReinitGuardBounds(t *testing.T) {
	g := NewReinitGuard(2, time.Hour)

	if !g.Allow() {
		t.Error("expected first attempt to be allowed")
	}
	if !g.Allow() {
		t.Error("expected second attempt to be allowed")
	}
	if g.Allow() {
		t.Error("expected third attempt to be denied")
	}
}

func TestReinitGuardResetsAfterCooldown(t *testing.T) {
	g := NewReinitGuard(1, 10*time.Millisecond)

	if !g.Allow() {
		t.Fatal("expected first attempt to be allowed")
	}
	time.Sleep(20 * time.Millisecond)

	if !g.Allow() {
		t.Error("expected attempt after cooldown to be allowed")
	}
}

func TestReinitGuardExplicitReset(t *testing.T) {
	g := NewReinitGuard(1, time.Hour)

	g.Allow()
	g.Reset()

	if !g.Allow() {
		t.Error("expected attempt after explicit reset to be allowed")
	}
}
