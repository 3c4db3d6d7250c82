package session

import (
	"sync"
	"time"
)

// DelayRand is the random source for typing delays; *rand.Rand satisfies it.
type DelayRand interface {
	Int63n(n int64) int64
}

type pendingReply struct {
	timer *time.Timer
}

// ReplyScheduler delays reply delivery by a random "typing" interval.
// At most one reply per key is pending: scheduling a new one cancels the
// previous delivery.
type ReplyScheduler struct {
	mu      sync.Mutex
	min     time.Duration
	max     time.Duration
	rnd     DelayRand
	pending map[int64]*pendingReply
	stopped bool
}

func NewReplyScheduler(minDelay, maxDelay time.Duration, rnd DelayRand) *ReplyScheduler {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &ReplyScheduler{
		min:     minDelay,
		max:     maxDelay,
		rnd:     rnd,
		pending: make(map[int64]*pendingReply),
	}
}

func (r *ReplyScheduler) delay() time.Duration {
	if r.max <= r.min {
		return r.min
	}
	return r.min + time.Duration(r.rnd.Int63n(int64(r.max-r.min)+1))
}

// Schedule arranges for deliver to run after the typing delay. It reports
// whether an older pending reply for the same key was cancelled. With a
// zero delay deliver runs before Schedule returns.
func (r *ReplyScheduler) Schedule(key int64, deliver func()) bool {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return false
	}
	replaced := r.cancelLocked(key)
	d := r.delay()
	if d <= 0 {
		r.mu.Unlock()
		deliver()
		return replaced
	}
	p := &pendingReply{}
	p.timer = time.AfterFunc(d, func() {
		r.mu.Lock()
		if r.pending[key] != p {
			// superseded after the timer already fired
			r.mu.Unlock()
			return
		}
		delete(r.pending, key)
		r.mu.Unlock()
		deliver()
	})
	r.pending[key] = p
	r.mu.Unlock()
	return replaced
}

// Cancel drops the pending reply for key, if any.
func (r *ReplyScheduler) Cancel(key int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelLocked(key)
}

func (r *ReplyScheduler) cancelLocked(key int64) bool {
	p, ok := r.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(r.pending, key)
	return true
}

// Pending reports whether a reply for key is waiting.
func (r *ReplyScheduler) Pending(key int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[key]
	return ok
}

// Stop cancels everything pending and refuses new work.
func (r *ReplyScheduler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.pending {
		r.cancelLocked(key)
	}
	r.stopped = true
}
