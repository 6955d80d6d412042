package ratelimiter

import (
	"strconv"
	"sync"
	"time"
)

// Limiter is a fixed-window request counter. Each key keeps at most the
// current and the previous window alive; older windows of a key that went
// quiet are never revisited.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]int
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		buckets: make(map[string]int),
		now:     time.Now,
	}
}

// NewLimiterWithClock is used by tests to drive window rollover.
func NewLimiterWithClock(now func() time.Time) *Limiter {
	l := NewLimiter()
	l.now = now

	return l
}

// Admit counts the request against key and reports whether it is still
// within limit for the current window.
func (l *Limiter) Admit(key string, limit int, window time.Duration) bool {
	windowSeconds := int64(window / time.Second)
	if windowSeconds <= 0 {
		windowSeconds = 1
	}

	index := l.now().Unix() / windowSeconds

	l.mu.Lock()
	defer l.mu.Unlock()

	current := bucketKey(key, index)
	l.buckets[current]++
	count := l.buckets[current]

	delete(l.buckets, bucketKey(key, index-1))

	return count <= limit
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.buckets)
}

func bucketKey(key string, index int64) string {
	return key + ":" + strconv.FormatInt(index, 10)
}
