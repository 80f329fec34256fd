// Package perf keeps recent timings of web requests, store queries and backend calls.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind says what was timed.
type EntryKind uint8

const (
	KindRequest EntryKind = iota // inbound HTTP request to the frontend
	KindQuery                    // local SQL statement
	KindBackend                  // outbound call to the FlipFit REST API
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // request path, "Op" for queries, "METHOD /path" for backend calls
	StatusCode int    // 0 for queries and failed backend calls
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of entries.
// When full the oldest entry is overwritten. Aggregation happens only in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   int64 // requests ever recorded
	backend int64 // backend calls ever recorded
}

// NewCollector creates a collector holding the last size entries.
// POST: size <= 0 falls back to DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size), size: size}
}

// Record stores an entry.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	switch e.Kind {
	case KindRequest:
		atomic.AddInt64(&c.count, 1)
	case KindBackend:
		atomic.AddInt64(&c.backend, 1)
	}
}

// ObserveBackend records one outbound API call. It matches the API client's observer signature.
func (c *Collector) ObserveBackend(method, path string, status int, d time.Duration) {
	c.Record(Entry{
		Kind:       KindBackend,
		Path:       method + " " + path,
		StatusCode: status,
		DurationMs: float64(d.Microseconds()) / 1000.0,
		Timestamp:  time.Now().Add(-d),
	})
}

// TotalRecorded returns the number of requests ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.count)
}

// Snapshot holds aggregated performance data.
type Snapshot struct {
	TotalRequests       int64
	TotalBackendCalls   int64
	BackendFailures     int // non-2xx or transport failures inside the window
	RequestP50Ms        float64
	RequestP95Ms        float64
	RequestP99Ms        float64
	BackendP95Ms        float64
	SlowestPaths        []PathStat
	SlowestQueries      []PathStat
	SlowestBackendCalls []PathStat
}

// PathStat aggregates timing for one path, query op or backend endpoint.
type PathStat struct {
	Path    string
	AvgMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
}

type statSet map[string]*PathStat

func (s statSet) add(e Entry) {
	p, ok := s[e.Path]
	if !ok {
		p = &PathStat{Path: e.Path}
		s[e.Path] = p
	}
	p.Count++
	p.TotalMs += e.DurationMs
	if e.DurationMs > p.MaxMs {
		p.MaxMs = e.DurationMs
	}
}

// Snapshot aggregates entries newer than since, keeping the topN slowest of each kind.
// It sorts, so call it on page load only.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	var requestDurations, backendDurations []float64
	stats := map[EntryKind]statSet{KindRequest: {}, KindQuery: {}, KindBackend: {}}
	failures := 0

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		set, ok := stats[e.Kind]
		if !ok {
			continue
		}
		set.add(e)
		switch e.Kind {
		case KindRequest:
			requestDurations = append(requestDurations, e.DurationMs)
		case KindBackend:
			backendDurations = append(backendDurations, e.DurationMs)
			if e.StatusCode < 200 || e.StatusCode > 299 {
				failures++
			}
		}
	}

	snap := Snapshot{
		TotalRequests:       c.TotalRecorded(),
		TotalBackendCalls:   atomic.LoadInt64(&c.backend),
		BackendFailures:     failures,
		SlowestPaths:        topByAvg(stats[KindRequest], topN),
		SlowestQueries:      topByAvg(stats[KindQuery], topN),
		SlowestBackendCalls: topByAvg(stats[KindBackend], topN),
	}
	if len(requestDurations) > 0 {
		sort.Float64s(requestDurations)
		snap.RequestP50Ms = percentile(requestDurations, 50)
		snap.RequestP95Ms = percentile(requestDurations, 95)
		snap.RequestP99Ms = percentile(requestDurations, 99)
	}
	if len(backendDurations) > 0 {
		sort.Float64s(backendDurations)
		snap.BackendP95Ms = percentile(backendDurations, 95)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns up to n stats, slowest average first.
func topByAvg(stats statSet, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
