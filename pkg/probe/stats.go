package probe

import (
	"sync"
	"time"
)

// Stats accumulates probe counters for one session. Updates from the
// interactive mode's receive and send activities may interleave, so every
// mutation is independently safe; no cross-counter atomicity is promised.
type Stats struct {
	mu             sync.Mutex
	connAttempts   int64
	connSuccesses  int64
	connFailures   int64
	msgsSent       int64
	msgsReceived   int64
	totalLatency   time.Duration
	minLatency     time.Duration
	maxLatency     time.Duration
	latencySamples int64
}

// NewStats returns an empty accumulator.
func NewStats() *Stats {
	return &Stats{}
}

// AddAttempt records one connect attempt and its outcome.
func (s *Stats) AddAttempt(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connAttempts++
	if success {
		s.connSuccesses++
	} else {
		s.connFailures++
	}
}

// AddSent records one sent message.
func (s *Stats) AddSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgsSent++
}

// AddReceived records one received message.
func (s *Stats) AddReceived() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgsReceived++
}

// AddLatency folds one round-trip measurement into the accumulator.
func (s *Stats) AddLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalLatency += d
	if s.latencySamples == 0 || d < s.minLatency {
		s.minLatency = d
	}
	if d > s.maxLatency {
		s.maxLatency = d
	}
	s.latencySamples++
}

// Snapshot returns a consistent copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ConnAttempts:   s.connAttempts,
		ConnSuccesses:  s.connSuccesses,
		ConnFailures:   s.connFailures,
		MsgsSent:       s.msgsSent,
		MsgsReceived:   s.msgsReceived,
		TotalLatency:   s.totalLatency,
		MinLatency:     s.minLatency,
		MaxLatency:     s.maxLatency,
		LatencySamples: s.latencySamples,
	}
}

// Snapshot is an immutable view of probe counters. The zero value is the
// identity element of Merge: LatencySamples distinguishes "no samples yet"
// from "minimum latency is zero", so an untouched snapshot never pollutes
// another's extrema.
type Snapshot struct {
	ConnAttempts   int64
	ConnSuccesses  int64
	ConnFailures   int64
	MsgsSent       int64
	MsgsReceived   int64
	TotalLatency   time.Duration
	MinLatency     time.Duration
	MaxLatency     time.Duration
	LatencySamples int64
}

// Merge combines two snapshots: counters sum, latency extrema combine via
// min/max but only from sides that carry at least one sample.
func (s Snapshot) Merge(o Snapshot) Snapshot {
	out := Snapshot{
		ConnAttempts:   s.ConnAttempts + o.ConnAttempts,
		ConnSuccesses:  s.ConnSuccesses + o.ConnSuccesses,
		ConnFailures:   s.ConnFailures + o.ConnFailures,
		MsgsSent:       s.MsgsSent + o.MsgsSent,
		MsgsReceived:   s.MsgsReceived + o.MsgsReceived,
		TotalLatency:   s.TotalLatency + o.TotalLatency,
		LatencySamples: s.LatencySamples + o.LatencySamples,
	}
	switch {
	case s.LatencySamples == 0:
		out.MinLatency, out.MaxLatency = o.MinLatency, o.MaxLatency
	case o.LatencySamples == 0:
		out.MinLatency, out.MaxLatency = s.MinLatency, s.MaxLatency
	default:
		out.MinLatency = min(s.MinLatency, o.MinLatency)
		out.MaxLatency = max(s.MaxLatency, o.MaxLatency)
	}
	return out
}

// SuccessRate returns the connect success percentage, 0 when no attempts
// were made.
func (s Snapshot) SuccessRate() float64 {
	if s.ConnAttempts == 0 {
		return 0
	}
	return float64(s.ConnSuccesses) / float64(s.ConnAttempts) * 100
}

// AvgLatency returns the mean round-trip latency. ok is false when no
// messages were received.
func (s Snapshot) AvgLatency() (avg time.Duration, ok bool) {
	if s.MsgsReceived == 0 {
		return 0, false
	}
	return s.TotalLatency / time.Duration(s.MsgsReceived), true
}
