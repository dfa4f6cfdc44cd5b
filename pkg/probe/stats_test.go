package probe

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsCounters(t *testing.T) {
	s := NewStats()
	s.AddAttempt(true)
	s.AddAttempt(false)
	s.AddAttempt(true)
	s.AddSent()
	s.AddReceived()
	s.AddLatency(10 * time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, int64(3), snap.ConnAttempts)
	assert.Equal(t, int64(2), snap.ConnSuccesses)
	assert.Equal(t, int64(1), snap.ConnFailures)
	assert.Equal(t, snap.ConnAttempts, snap.ConnSuccesses+snap.ConnFailures)
	assert.Equal(t, int64(1), snap.MsgsSent)
	assert.Equal(t, int64(1), snap.MsgsReceived)
}

func TestStatsLatencyExtrema(t *testing.T) {
	s := NewStats()
	for _, d := range []time.Duration{30 * time.Millisecond, 10 * time.Millisecond, 50 * time.Millisecond} {
		s.AddLatency(d)
	}
	snap := s.Snapshot()
	assert.Equal(t, 10*time.Millisecond, snap.MinLatency)
	assert.Equal(t, 50*time.Millisecond, snap.MaxLatency)
	assert.Equal(t, 90*time.Millisecond, snap.TotalLatency)
	assert.Equal(t, int64(3), snap.LatencySamples)
}

func TestStatsZeroLatencySample(t *testing.T) {
	// A genuine zero-duration sample must be kept distinct from "no
	// samples yet".
	s := NewStats()
	s.AddLatency(0)
	snap := s.Snapshot()
	assert.Equal(t, time.Duration(0), snap.MinLatency)
	assert.Equal(t, int64(1), snap.LatencySamples)
}

func TestSnapshotMerge(t *testing.T) {
	a := Snapshot{
		ConnAttempts: 2, ConnSuccesses: 2,
		MsgsSent: 2, MsgsReceived: 2,
		TotalLatency:   30 * time.Millisecond,
		MinLatency:     10 * time.Millisecond,
		MaxLatency:     20 * time.Millisecond,
		LatencySamples: 2,
	}
	b := Snapshot{
		ConnAttempts: 1, ConnFailures: 1,
		MsgsSent:       1,
		MsgsReceived:   1,
		TotalLatency:   5 * time.Millisecond,
		MinLatency:     5 * time.Millisecond,
		MaxLatency:     5 * time.Millisecond,
		LatencySamples: 1,
	}

	got := a.Merge(b)
	assert.Equal(t, int64(3), got.ConnAttempts)
	assert.Equal(t, int64(2), got.ConnSuccesses)
	assert.Equal(t, int64(1), got.ConnFailures)
	assert.Equal(t, int64(3), got.MsgsSent)
	assert.Equal(t, int64(3), got.MsgsReceived)
	assert.Equal(t, 35*time.Millisecond, got.TotalLatency)
	assert.Equal(t, 5*time.Millisecond, got.MinLatency)
	assert.Equal(t, 20*time.Millisecond, got.MaxLatency)
}

func TestSnapshotMergeIdentity(t *testing.T) {
	// A snapshot with zero samples must never change the other side's
	// extrema, in either merge order.
	withSamples := Snapshot{
		ConnAttempts: 1, ConnSuccesses: 1,
		MsgsReceived:   1,
		TotalLatency:   40 * time.Millisecond,
		MinLatency:     40 * time.Millisecond,
		MaxLatency:     40 * time.Millisecond,
		LatencySamples: 1,
	}
	empty := Snapshot{ConnAttempts: 1, ConnFailures: 1}

	for name, got := range map[string]Snapshot{
		"empty right": withSamples.Merge(empty),
		"empty left":  empty.Merge(withSamples),
	} {
		assert.Equal(t, 40*time.Millisecond, got.MinLatency, name)
		assert.Equal(t, 40*time.Millisecond, got.MaxLatency, name)
		assert.Equal(t, int64(2), got.ConnAttempts, name)
		assert.Equal(t, int64(1), got.LatencySamples, name)
	}
}

func TestSnapshotSuccessRate(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int64
		successes int64
		want      float64
	}{
		{"no attempts", 0, 0, 0},
		{"all success", 4, 4, 100},
		{"half", 4, 2, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{ConnAttempts: tt.attempts, ConnSuccesses: tt.successes}
			assert.Equal(t, tt.want, snap.SuccessRate())
		})
	}
}

func TestSnapshotAvgLatency(t *testing.T) {
	_, ok := Snapshot{}.AvgLatency()
	assert.False(t, ok)

	avg, ok := Snapshot{MsgsReceived: 2, TotalLatency: 30 * time.Millisecond}.AvgLatency()
	assert.True(t, ok)
	assert.Equal(t, 15*time.Millisecond, avg)
}

func TestStatsConcurrentUpdates(t *testing.T) {
	// Receive-path and send-path increments interleave in interactive mode.
	s := NewStats()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(recv bool) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if recv {
					s.AddReceived()
				} else {
					s.AddSent()
				}
			}
		}(i == 0)
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, int64(1000), snap.MsgsSent)
	assert.Equal(t, int64(1000), snap.MsgsReceived)
}
