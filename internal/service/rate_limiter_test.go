package service

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFixedWindowRateLimiter_AllowsMaxThenDenies(t *testing.T) {
	l := NewFixedWindowRateLimiter(15*time.Minute, 5, zap.NewNop())

	for i := 0; i < 5; i++ {
		if !l.Allow("reset:user@example.com") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("reset:user@example.com") {
		t.Fatalf("sixth attempt within window should be denied")
	}
	// El contador no se incrementa tras el rechazo.
	if l.Allow("reset:user@example.com") {
		t.Fatalf("seventh attempt within window should be denied")
	}
}

func TestFixedWindowRateLimiter_WindowReset(t *testing.T) {
	l := NewFixedWindowRateLimiter(15*time.Minute, 5, zap.NewNop())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		if !l.Allow("k") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("k") {
		t.Fatalf("expected deny at limit")
	}

	// Justo al borde de la ventana sigue bloqueado.
	now = now.Add(15 * time.Minute)
	if l.Allow("k") {
		t.Fatalf("expected deny exactly at window edge")
	}

	// Pasada la ventana, el contador arranca de nuevo.
	now = now.Add(time.Millisecond)
	if !l.Allow("k") {
		t.Fatalf("expected allow after window elapsed")
	}
	for i := 0; i < 4; i++ {
		if !l.Allow("k") {
			t.Fatalf("attempt %d of new window should be allowed", i+2)
		}
	}
	if l.Allow("k") {
		t.Fatalf("expected deny once new window is exhausted")
	}
}

func TestFixedWindowRateLimiter_KeysAreIndependent(t *testing.T) {
	l := NewFixedWindowRateLimiter(15*time.Minute, 2, zap.NewNop())

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("key a should get its full budget")
	}
	if l.Allow("a") {
		t.Fatalf("key a should be exhausted")
	}
	if !l.Allow("b") {
		t.Fatalf("key b should be unaffected by key a")
	}
}

func TestFixedWindowRateLimiter_EmptyKeyRejected(t *testing.T) {
	l := NewFixedWindowRateLimiter(time.Minute, 5, zap.NewNop())
	if l.Allow("   ") {
		t.Fatalf("expected empty key to be rejected")
	}
}

func TestFixedWindowRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	l := NewFixedWindowRateLimiter(time.Minute, 5, zap.NewNop())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(2 * time.Minute)
	l.Allow("fresh")

	l.cleanup()

	l.mu.Lock()
	_, oldKept := l.entries["old"]
	_, freshKept := l.entries["fresh"]
	l.mu.Unlock()

	if oldKept {
		t.Fatalf("expected expired entry to be purged")
	}
	if !freshKept {
		t.Fatalf("expected fresh entry to survive cleanup")
	}
}
