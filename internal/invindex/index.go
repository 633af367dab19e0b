// Package invindex implements the inverted index data structure: a
// word -> location -> positions map, a per-location word-count table, and
// the exact/prefix search and ranking algorithm over them.
package invindex

import (
	"sort"
	"strings"
)

// SearchResult is one location's aggregate score for a single query. It is
// produced only inside Search, which is the only code that reads the
// index's maps directly.
type SearchResult struct {
	Where string
	Count int
	Score float64
}

// Index is the capability set both the plain InvertedIndex and the
// lock-wrapped Locked implement, so builders and query engines can be
// generic over plain-vs-concurrent.
type Index interface {
	Add(word, location string, position int)
	Merge(other *InvertedIndex)
	Contains(word string) bool
	ContainsLocation(word, location string) bool
	ContainsPosition(word, location string, position int) bool
	Words() []string
	Locations(word string) []string
	Positions(word, location string) []int
	Counts() map[string]int
	Search(stems []string, exact bool) []SearchResult
}

// wordEntry holds the location -> positions map for one word, in location-
// ascending order.
type wordEntry struct {
	locs      []string
	positions map[string][]int
}

// InvertedIndex is the plain, unsynchronized implementation. Concurrent
// access is layered on top by Locked; this type assumes single-threaded
// use (e.g. as IndexBuilder's thread-local per-file/per-page index).
type InvertedIndex struct {
	words   []string
	entries map[string]*wordEntry
	counts  map[string]int
}

// New returns an empty index.
func New() *InvertedIndex {
	return &InvertedIndex{
		entries: make(map[string]*wordEntry),
		counts:  make(map[string]int),
	}
}

// Add inserts (word, location, position), deduplicating the position if
// it's already present, and updates counts[location] = max(existing,
// position). Idempotent per (word, location, position) triple.
func (idx *InvertedIndex) Add(word, location string, position int) {
	entry := idx.entryFor(word)
	insertSortedUnique(&entry.locs, location)

	positions := entry.positions[location]
	pos := sort.SearchInts(positions, position)
	if pos == len(positions) || positions[pos] != position {
		positions = append(positions, 0)
		copy(positions[pos+1:], positions[pos:])
		positions[pos] = position
		entry.positions[location] = positions
	}

	idx.bumpCount(location, position)
}

func (idx *InvertedIndex) entryFor(word string) *wordEntry {
	if entry, ok := idx.entries[word]; ok {
		return entry
	}
	entry := &wordEntry{positions: make(map[string][]int)}
	idx.entries[word] = entry
	insertSortedUnique(&idx.words, word)
	return entry
}

func (idx *InvertedIndex) bumpCount(location string, position int) {
	if position > idx.counts[location] {
		idx.counts[location] = position
	}
}

// Merge bulk-unions other into idx. For each word: if idx doesn't have it,
// the whole entry is spliced in; otherwise positions are unioned per
// location. Counts become the per-location max of both indexes.
func (idx *InvertedIndex) Merge(other *InvertedIndex) {
	if other == nil {
		return
	}

	for _, word := range other.words {
		otherEntry := other.entries[word]
		entry := idx.entryFor(word)
		for _, location := range otherEntry.locs {
			insertSortedUnique(&entry.locs, location)
			entry.positions[location] = unionSorted(entry.positions[location], otherEntry.positions[location])
		}
	}

	for location, count := range other.counts {
		if count > idx.counts[location] {
			idx.counts[location] = count
		}
	}
}

// Contains reports whether word appears anywhere in the index.
func (idx *InvertedIndex) Contains(word string) bool {
	_, ok := idx.entries[word]
	return ok
}

// ContainsLocation reports whether word appears at location.
func (idx *InvertedIndex) ContainsLocation(word, location string) bool {
	entry, ok := idx.entries[word]
	if !ok {
		return false
	}
	return containsSorted(entry.locs, location)
}

// ContainsPosition reports whether word appears at location at position.
func (idx *InvertedIndex) ContainsPosition(word, location string, position int) bool {
	entry, ok := idx.entries[word]
	if !ok {
		return false
	}
	positions, ok := entry.positions[location]
	if !ok {
		return false
	}
	i := sort.SearchInts(positions, position)
	return i < len(positions) && positions[i] == position
}

// Words returns every indexed word in ascending order.
func (idx *InvertedIndex) Words() []string {
	out := make([]string, len(idx.words))
	copy(out, idx.words)
	return out
}

// Locations returns word's locations in ascending order, or nil if word
// isn't indexed.
func (idx *InvertedIndex) Locations(word string) []string {
	entry, ok := idx.entries[word]
	if !ok {
		return nil
	}
	out := make([]string, len(entry.locs))
	copy(out, entry.locs)
	return out
}

// Positions returns the ascending, deduplicated positions of word at
// location, or nil if that pair isn't indexed.
func (idx *InvertedIndex) Positions(word, location string) []int {
	entry, ok := idx.entries[word]
	if !ok {
		return nil
	}
	positions, ok := entry.positions[location]
	if !ok {
		return nil
	}
	out := make([]int, len(positions))
	copy(out, positions)
	return out
}

// Counts returns a copy of the location -> word-count table.
func (idx *InvertedIndex) Counts() map[string]int {
	out := make(map[string]int, len(idx.counts))
	for k, v := range idx.counts {
		out[k] = v
	}
	return out
}

// Search ranks locations against a sorted set of query stems. When exact
// is true, only the stem itself is a candidate word; otherwise every
// indexed word having the stem as a prefix is a candidate. Each (word,
// location) pair contributes to a query's totals at most once, even if
// multiple stems resolve via prefix to the same word.
func (idx *InvertedIndex) Search(stems []string, exact bool) []SearchResult {
	hits := make(map[string]*SearchResult)
	var order []*SearchResult
	processed := make(map[string]bool)

	for _, stem := range stems {
		for _, word := range idx.candidates(stem, exact) {
			if processed[word] {
				continue
			}
			processed[word] = true

			entry := idx.entries[word]
			for _, location := range entry.locs {
				count := len(entry.positions[location])
				if existing, ok := hits[location]; ok {
					existing.Count += count
					existing.Score = float64(existing.Count) / float64(idx.counts[location])
					continue
				}

				sr := &SearchResult{
					Where: location,
					Count: count,
					Score: float64(count) / float64(idx.counts[location]),
				}
				hits[location] = sr
				order = append(order, sr)
			}
		}
	}

	results := make([]SearchResult, len(order))
	for i, sr := range order {
		results[i] = *sr
	}

	sortResults(results)
	return results
}

// candidates returns the indexed words matching stem: just stem itself
// when exact, otherwise the contiguous run of the sorted word list that
// has stem as a prefix (a prefix scan, never a full linear filter).
func (idx *InvertedIndex) candidates(stem string, exact bool) []string {
	if exact {
		if idx.Contains(stem) {
			return []string{stem}
		}
		return nil
	}

	start := sort.SearchStrings(idx.words, stem)
	end := start
	for end < len(idx.words) && strings.HasPrefix(idx.words[end], stem) {
		end++
	}
	return idx.words[start:end]
}

func sortResults(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		al, bl := strings.ToLower(a.Where), strings.ToLower(b.Where)
		if al != bl {
			return al < bl
		}
		return a.Where < b.Where
	})
}

func insertSortedUnique(slice *[]string, value string) {
	i := sort.SearchStrings(*slice, value)
	if i < len(*slice) && (*slice)[i] == value {
		return
	}
	*slice = append(*slice, "")
	copy((*slice)[i+1:], (*slice)[i:])
	(*slice)[i] = value
}

func containsSorted(slice []string, value string) bool {
	i := sort.SearchStrings(slice, value)
	return i < len(slice) && slice[i] == value
}

func unionSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
