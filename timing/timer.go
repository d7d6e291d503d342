package timing

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// Timer accumulates elapsed time per operation. It is safe for concurrent
// use. The zero value is ready to use.
type Timer struct {
	mu        sync.RWMutex
	durations map[string]time.Duration
	calls     map[string]int
	now       func() time.Time
}

// New returns an empty Timer.
func New() *Timer {
	return &Timer{}
}

// Record adds d to the total for op. Negative durations count as zero.
func (t *Timer) Record(op string, d time.Duration) {
	d = max(d, 0)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.durations == nil {
		t.durations = make(map[string]time.Duration)
		t.calls = make(map[string]int)
	}
	t.durations[op] += d
	t.calls[op]++
}

// Time runs fn and records its duration under op, whether or not fn fails.
func (t *Timer) Time(op string, fn func() error) error {
	start := t.clock()
	defer func() {
		t.Record(op, t.clock().Sub(start))
	}()
	return fn()
}

// Elapsed returns the accumulated duration for op and whether op has been
// recorded at all.
func (t *Timer) Elapsed(op string) (time.Duration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.durations[op]
	return d, ok
}

// Calls returns how many times op has been recorded.
func (t *Timer) Calls(op string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.calls[op]
}

// Snapshot returns a copy of the timing record.
func (t *Timer) Snapshot() map[string]time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make(map[string]time.Duration, len(t.durations))
	maps.Copy(snapshot, t.durations)
	return snapshot
}

// Total returns the sum of all recorded durations.
func (t *Timer) Total() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total time.Duration
	for _, d := range t.durations {
		total += d
	}
	return total
}

// Operations returns the recorded operation names in sorted order.
func (t *Timer) Operations() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Sorted(maps.Keys(t.durations))
}

// MarshalJSON encodes the record as an object mapping operation names to
// milliseconds.
func (t *Timer) MarshalJSON() ([]byte, error) {
	snapshot := t.Snapshot()

	millis := make(map[string]float64, len(snapshot))
	for op, d := range snapshot {
		millis[op] = float64(d) / float64(time.Millisecond)
	}
	return json.Marshal(millis)
}

// String renders the record as space separated op=duration pairs in
// operation order.
func (t *Timer) String() string {
	snapshot := t.Snapshot()

	pairs := make([]string, 0, len(snapshot))
	for _, op := range slices.Sorted(maps.Keys(snapshot)) {
		pairs = append(pairs, fmt.Sprintf("%s=%s", op, snapshot[op]))
	}
	return strings.Join(pairs, " ")
}

func (t *Timer) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}
