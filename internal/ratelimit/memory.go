package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Memory is the best-effort in-process limiter used when no durable table is
// configured. Expired windows are swept opportunistically on access.
type Memory struct {
	max    int
	period time.Duration
	now    func() time.Time

	mu sync.Mutex
	m  map[string]*window

	lastSweep time.Time
}

func NewMemory(max int, period time.Duration) *Memory {
	return &Memory{
		max:    max,
		period: period,
		now:    time.Now,
		m:      make(map[string]*window),
	}
}

func (l *Memory) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.m[key]
	if !ok || !now.Before(w.resetAt) {
		l.m[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return true, nil
	}
	if w.count >= l.max {
		return false, nil
	}
	w.count++
	return true, nil
}

// sweep drops expired windows at most once per period to keep the map bounded.
func (l *Memory) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.period {
		return
	}
	l.lastSweep = now
	for k, w := range l.m {
		if !now.Before(w.resetAt) {
			delete(l.m, k)
		}
	}
}
