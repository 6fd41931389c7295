// Package timing records how long each pipeline stage takes.
package timing

import (
	"sync"
	"time"
)

type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		timings: make(map[string][]time.Duration),
		now:     time.Now,
	}
}

// Start returns a stop function that records the elapsed time for operation.
func (tt *Tracker) Start(operation string) func() time.Duration {
	start := tt.now()
	return func() time.Duration {
		d := tt.now().Sub(start)
		tt.Record(operation, d)
		return d
	}
}

func (tt *Tracker) Record(operation string, d time.Duration) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.timings[operation] = append(tt.timings[operation], d)
}

func (tt *Tracker) Timings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) Average(operation string) time.Duration {
	timings := tt.Timings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}

// Snapshot returns the average per operation.
func (tt *Tracker) Snapshot() map[string]time.Duration {
	tt.mu.RLock()
	ops := make([]string, 0, len(tt.timings))
	for op := range tt.timings {
		ops = append(ops, op)
	}
	tt.mu.RUnlock()

	out := make(map[string]time.Duration, len(ops))
	for _, op := range ops {
		out[op] = tt.Average(op)
	}
	return out
}

// Reset clears one operation, or everything when operation is empty.
func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
	} else {
		delete(tt.timings, operation)
	}
}
