package messaging

import (
	"sync"
	"time"

	cuckoo "github.com/seiflotfy/cuckoofilter"
)

// RateLimiter enforces a per-sender message rate over fixed windows: a
// sender's count resets once window has elapsed since its current window
// began, so bursts straddling a window boundary are not smoothed as a
// sliding window would. A cuckoofilter (teacher's direct dependency)
// records every sender seen, answering Seen; it does not gate window
// creation, so each distinct sender adds a window entry until GC removes
// it. GC runs only when called.
type RateLimiter struct {
	limit     int
	window    time.Duration
	idleAfter time.Duration

	seen *cuckoo.Filter

	mu      sync.Mutex
	windows map[string]*senderWindow
}

type senderWindow struct {
	count      int
	windowFrom time.Time
	lastSeen   time.Time
}

// NewRateLimiter constructs a RateLimiter allowing limit messages per
// window per sender, garbage-collecting senders idle for idleAfter.
// Non-positive arguments default to 1000 messages per one-second window
// and a five-minute idle period.
func NewRateLimiter(limit int, window, idleAfter time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1000
	}
	if window <= 0 {
		window = time.Second
	}
	if idleAfter <= 0 {
		idleAfter = 5 * time.Minute
	}
	return &RateLimiter{
		limit:     limit,
		window:    window,
		idleAfter: idleAfter,
		seen:      cuckoo.NewFilter(1 << 16),
		windows:   make(map[string]*senderWindow),
	}
}

// Allow reports whether sender may send one more message right now,
// recording the attempt either way.
func (r *RateLimiter) Allow(sender string) bool {
	now := time.Now().UTC()
	key := []byte(sender)

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[sender]
	if !ok {
		r.seen.InsertUnique(key)
		w = &senderWindow{windowFrom: now}
		r.windows[sender] = w
	}
	w.lastSeen = now

	if now.Sub(w.windowFrom) > r.window {
		w.windowFrom = now
		w.count = 0
	}

	if w.count >= r.limit {
		return false
	}
	w.count++
	return true
}

// Seen reports whether sender has been observed at all (a cheap,
// probabilistic pre-check via the cuckoo filter, with possible false
// positives but no false negatives).
func (r *RateLimiter) Seen(sender string) bool {
	return r.seen.Lookup([]byte(sender))
}

// GC removes sender windows idle for longer than idleAfter, also evicting
// them from the cuckoo filter so long-idle senders don't pin filter
// capacity forever.
func (r *RateLimiter) GC() int {
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for k, w := range r.windows {
		if now.Sub(w.lastSeen) > r.idleAfter {
			delete(r.windows, k)
			r.seen.Delete([]byte(k))
			removed++
		}
	}
	return removed
}
