package services

import (
	"sync"
	"time"
)

// LoginLimiter counts failed login attempts per key
type LoginLimiter interface {
	Increment(key string)
	IsLimited(key string) bool
	Clear(key string)
}

type attemptWindow struct {
	count     int
	expiresAt time.Time
}

// MemoryLimiter is a LoginLimiter backed by an expiring in-process map.
// A key is limited once it reaches maxAttempts within window of its first
// failure.
type MemoryLimiter struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	attempts    map[string]*attemptWindow
	now         func() time.Time
}

func NewMemoryLimiter(maxAttempts int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		attempts:    make(map[string]*attemptWindow),
		now:         time.Now,
	}
}

func (l *MemoryLimiter) Increment(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	entry, ok := l.attempts[key]
	if !ok {
		entry = &attemptWindow{expiresAt: now.Add(l.window)}
		l.attempts[key] = entry
	}
	entry.count++
}

func (l *MemoryLimiter) IsLimited(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.attempts[key]
	if !ok {
		return false
	}
	if !l.now().Before(entry.expiresAt) {
		delete(l.attempts, key)
		return false
	}
	return entry.count >= l.maxAttempts
}

func (l *MemoryLimiter) Clear(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for key, entry := range l.attempts {
		if !now.Before(entry.expiresAt) {
			delete(l.attempts, key)
		}
	}
}
