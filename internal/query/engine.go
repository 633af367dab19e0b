// Package query parses query files into canonical queries and drives
// search against an index, sequentially or concurrently, de-duplicating
// queries that normalize to the same canonical form.
package query

import (
	"bufio"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"invexo/internal/invindex"
	"invexo/internal/metrics"
	"invexo/internal/textnorm"
	"invexo/internal/workqueue"
)

// Results is the canonical-query -> ranked-results map, guarded by its own
// mutex so the reserve-then-fill pattern is safe to drive from many
// concurrently-submitted tasks: reserving an empty slot for a canonical
// query and only later filling it is what makes two tasks racing on the
// same canonical form invoke search at most once between them.
type Results struct {
	mu   sync.Mutex
	data map[string][]invindex.SearchResult
}

// NewResults returns an empty results map.
func NewResults() *Results {
	return &Results{data: make(map[string][]invindex.SearchResult)}
}

// TryReserve reserves canonical with an empty slot if it isn't already
// present, reporting whether the reservation succeeded. A caller that
// loses the race must not call search for canonical.
func (r *Results) TryReserve(canonical string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[canonical]; ok {
		return false
	}
	r.data[canonical] = nil
	return true
}

// Set fills a previously reserved canonical slot.
func (r *Results) Set(canonical string, results []invindex.SearchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[canonical] = results
}

// Ordered returns every canonical query and its results, sorted by
// canonical string ascending — the order the JSON sink writes in.
func (r *Results) Ordered() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]Entry, 0, len(r.data))
	for canonical, results := range r.data {
		entries = append(entries, Entry{Canonical: canonical, Results: results})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Canonical < entries[j].Canonical })
	return entries
}

// Entry pairs a canonical query with its ranked results.
type Entry struct {
	Canonical string
	Results   []invindex.SearchResult
}

// canonicalize reduces line to its sorted, de-duplicated stem set and the
// space-joined canonical string derived from it. ok is false for a line
// that normalizes to nothing.
func canonicalize(line string) (stems []string, canonical string, ok bool) {
	stems = textnorm.UniqueStems(line)
	if len(stems) == 0 {
		return nil, "", false
	}
	return stems, strings.Join(stems, " "), true
}

// Sequential reads path line by line and, for each line that canonicalizes
// to a not-yet-seen query, runs index.Search and records the result. It
// returns the populated Results. If m is non-nil, each line that carries a
// canonical query is recorded against QueriesTotal with an "answered" or
// "deduplicated" outcome, and every real Search call's latency is observed.
func Sequential(path string, index invindex.Index, exact bool, m *metrics.Metrics) (*Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	results := NewResults()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		stems, canonical, ok := canonicalize(scanner.Text())
		if !ok {
			continue
		}
		if !results.TryReserve(canonical) {
			recordQueryOutcome(m, "deduplicated")
			continue
		}
		results.Set(canonical, search(index, stems, exact, m))
	}
	return results, scanner.Err()
}

// Concurrent reads path line by line and submits each line as a task to a
// workers-sized WorkQueue, relying on Results' reserve-then-fill pattern so
// two tasks racing on the same canonical form invoke Search at most once
// between them. It blocks until every submitted task has completed. If m is
// non-nil, it records the same per-query metrics as Sequential plus the
// query pool's pending-task gauge.
func Concurrent(path string, index invindex.Index, exact bool, workers int, m *metrics.Metrics) (*Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	results := NewResults()
	queue := workqueue.New(workers)
	defer queue.Shutdown()
	if m != nil {
		queue.SetObserver(func(pending int) {
			m.WorkQueuePending.WithLabelValues("query").Set(float64(pending))
		})
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		queue.Submit(func() {
			stems, canonical, ok := canonicalize(line)
			if !ok {
				return
			}
			if !results.TryReserve(canonical) {
				recordQueryOutcome(m, "deduplicated")
				return
			}
			results.Set(canonical, search(index, stems, exact, m))
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	queue.Finish()
	return results, nil
}

// search runs index.Search, recording its latency and an "answered"
// outcome when m is non-nil.
func search(index invindex.Index, stems []string, exact bool, m *metrics.Metrics) []invindex.SearchResult {
	if m == nil {
		return index.Search(stems, exact)
	}
	start := time.Now()
	out := index.Search(stems, exact)
	m.QueryLatency.Observe(time.Since(start).Seconds())
	recordQueryOutcome(m, "answered")
	return out
}

func recordQueryOutcome(m *metrics.Metrics, outcome string) {
	if m != nil {
		m.QueriesTotal.WithLabelValues(outcome).Inc()
	}
}

// CountingSearch wraps an Index, counting how many times Search is
// actually invoked — used to verify the de-duplication guarantee that a
// re-submitted canonical query never triggers a second search.
type CountingSearch struct {
	invindex.Index
	mu    sync.Mutex
	Calls int
}

// Search delegates to the wrapped index and increments Calls.
func (c *CountingSearch) Search(stems []string, exact bool) []invindex.SearchResult {
	c.mu.Lock()
	c.Calls++
	c.mu.Unlock()
	return c.Index.Search(stems, exact)
}
