package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter: fixed window en memoria. Suficiente para una sola
// instancia; con réplicas usar RedisLimiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	max     int64
	window  time.Duration
	windows map[string]*window
}

type window struct {
	start time.Time
	hits  int64
}

func NewMemoryLimiter(max int, windowDur time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     int64(max),
		window:  windowDur,
		windows: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !w.start.Equal(winStart) {
		w = &window{start: winStart}
		l.windows[key] = w

		// Purga oportunista de ventanas viejas para acotar memoria.
		if len(l.windows) > 1024 {
			for k, old := range l.windows {
				if !old.start.Equal(winStart) {
					delete(l.windows, k)
				}
			}
		}
	}

	w.hits++
	allowed := w.hits <= l.max
	remaining := l.max - w.hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: w.hits,
		WindowTTL:   l.window - now.Sub(winStart),
	}
	if !allowed {
		res.RetryAfter = l.window - now.Sub(winStart)
	}
	return res, nil
}
