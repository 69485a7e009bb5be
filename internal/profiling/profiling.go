package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Per-tick stage timers. Workers and the driver both record into the same
// table, so entries are guarded by a mutex.

type stat struct {
	total time.Duration
	calls int
}

var (
	mu    sync.Mutex
	stats = make(map[string]*stat)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("chunksys.Tick")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		Record(name, time.Since(start))
	}
}

// Record adds d to the total for name.
func Record(name string, d time.Duration) {
	mu.Lock()
	s, ok := stats[name]
	if !ok {
		s = &stat{}
		stats[name] = s
	}
	s.total += d
	s.calls++
	mu.Unlock()
}

// ResetFrame clears the totals. The driver calls it at the start of each tick.
func ResetFrame() {
	mu.Lock()
	clear(stats)
	mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(stats))
	for k, s := range stats {
		out[k] = s.total
	}
	return out
}

// Calls returns how many times name was recorded since the last reset.
func Calls(name string) int {
	mu.Lock()
	defer mu.Unlock()
	if s, ok := stats[name]; ok {
		return s.calls
	}
	return 0
}

// TopN formats the n largest totals, e.g.
// "chunksys.Tick:4.2ms, lighting.Propagate:2.1ms(x3)".
func TopN(n int) string {
	type entry struct {
		name string
		stat
	}
	mu.Lock()
	list := make([]entry, 0, len(stats))
	for k, s := range stats {
		list = append(list, entry{k, *s})
	}
	mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].total != list[j].total {
			return list[i].total > list[j].total
		}
		return list[i].name < list[j].name
	})
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for _, e := range list[:n] {
		s := e.name + ":" + formatMs(e.total)
		if e.calls > 1 {
			s += fmt.Sprintf("(x%d)", e.calls)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing ".0".
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000
	s := fmt.Sprintf("%.1f", ms)
	return strings.TrimSuffix(s, ".0") + "ms"
}
