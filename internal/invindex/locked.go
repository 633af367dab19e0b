package invindex

import "invexo/internal/rwlock"

// Locked is a transparent concurrent façade over a plain InvertedIndex:
// every read method runs inside a read critical section, every mutating
// method inside a write critical section. Read methods copy their result
// before returning, so callers never observe torn state.
type Locked struct {
	lock *rwlock.ReadWriteLock
	idx  *InvertedIndex
}

// NewLocked returns an empty, lock-guarded index.
func NewLocked() *Locked {
	return &Locked{lock: rwlock.New(), idx: New()}
}

func (l *Locked) readLocked(fn func()) {
	l.lock.ReadLock()
	defer func() {
		if err := l.lock.ReadUnlock(); err != nil {
			panic(err)
		}
	}()
	fn()
}

func (l *Locked) writeLocked(fn func()) {
	token := l.lock.WriteLock()
	defer func() {
		if err := l.lock.WriteUnlock(token); err != nil {
			panic(err)
		}
	}()
	fn()
}

// Add runs InvertedIndex.Add under the write lock.
func (l *Locked) Add(word, location string, position int) {
	l.writeLocked(func() {
		l.idx.Add(word, location, position)
	})
}

// Merge runs InvertedIndex.Merge under a single write critical section
// covering the full traversal of other.
func (l *Locked) Merge(other *InvertedIndex) {
	l.writeLocked(func() {
		l.idx.Merge(other)
	})
}

// Contains runs InvertedIndex.Contains under the read lock.
func (l *Locked) Contains(word string) bool {
	var out bool
	l.readLocked(func() {
		out = l.idx.Contains(word)
	})
	return out
}

// ContainsLocation runs InvertedIndex.ContainsLocation under the read lock.
func (l *Locked) ContainsLocation(word, location string) bool {
	var out bool
	l.readLocked(func() {
		out = l.idx.ContainsLocation(word, location)
	})
	return out
}

// ContainsPosition runs InvertedIndex.ContainsPosition under the read lock.
func (l *Locked) ContainsPosition(word, location string, position int) bool {
	var out bool
	l.readLocked(func() {
		out = l.idx.ContainsPosition(word, location, position)
	})
	return out
}

// Words runs InvertedIndex.Words under the read lock; the returned slice
// is a snapshot copy.
func (l *Locked) Words() []string {
	var out []string
	l.readLocked(func() {
		out = l.idx.Words()
	})
	return out
}

// Locations runs InvertedIndex.Locations under the read lock; the returned
// slice is a snapshot copy.
func (l *Locked) Locations(word string) []string {
	var out []string
	l.readLocked(func() {
		out = l.idx.Locations(word)
	})
	return out
}

// Positions runs InvertedIndex.Positions under the read lock; the returned
// slice is a snapshot copy.
func (l *Locked) Positions(word, location string) []int {
	var out []int
	l.readLocked(func() {
		out = l.idx.Positions(word, location)
	})
	return out
}

// Counts runs InvertedIndex.Counts under the read lock; the returned map
// is a snapshot copy.
func (l *Locked) Counts() map[string]int {
	var out map[string]int
	l.readLocked(func() {
		out = l.idx.Counts()
	})
	return out
}

// Search runs InvertedIndex.Search under the read lock.
func (l *Locked) Search(stems []string, exact bool) []SearchResult {
	var out []SearchResult
	l.readLocked(func() {
		out = l.idx.Search(stems, exact)
	})
	return out
}
