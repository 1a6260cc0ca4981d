package services

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMemoryLimiter(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(3, 15*time.Minute)
	l.now = clock.Now

	key := "alice|10.0.0.1"
	for i := 0; i < 2; i++ {
		l.Increment(key)
	}
	if l.IsLimited(key) {
		t.Fatal("limited before reaching max attempts")
	}

	l.Increment(key)
	if !l.IsLimited(key) {
		t.Fatal("expected key to be limited")
	}
	if l.IsLimited("alice|10.0.0.2") {
		t.Error("other keys must not be limited")
	}

	clock.Advance(15 * time.Minute)
	if l.IsLimited(key) {
		t.Error("limit should expire with the window")
	}

	for i := 0; i < 3; i++ {
		l.Increment(key)
	}
	l.Clear(key)
	if l.IsLimited(key) {
		t.Error("Clear should reset the key")
	}
}
