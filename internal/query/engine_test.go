package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"invexo/internal/invindex"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeQueries(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.txt")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func sampleIndex() *invindex.InvertedIndex {
	idx := invindex.New()
	idx.Add("appl", "a.txt", 1)
	idx.Add("appl", "a.txt", 2)
	idx.Add("banana", "a.txt", 3)
	idx.Add("banana", "b.txt", 1)
	return idx
}

func TestSequentialDeduplicatesCanonicalQueries(t *testing.T) {
	path := writeQueries(t, "banana apple", "apple   banana", "", "apple")

	counting := &CountingSearch{Index: sampleIndex()}
	results, err := Sequential(path, counting, false, nil)
	require.NoError(t, err)

	ordered := results.Ordered()
	require.Len(t, ordered, 2)
	require.Equal(t, "appl", ordered[0].Canonical)
	require.Equal(t, "appl banana", ordered[1].Canonical)
	require.Equal(t, 2, counting.Calls)
}

func TestSequentialSkipsEmptyLines(t *testing.T) {
	path := writeQueries(t, "   ", "***", "apple")

	results, err := Sequential(path, sampleIndex(), false, nil)
	require.NoError(t, err)
	require.Len(t, results.Ordered(), 1)
}

func TestConcurrentDeduplicatesAcrossTasks(t *testing.T) {
	lines := make([]string, 0, 40)
	for i := 0; i < 20; i++ {
		lines = append(lines, "apple banana")
		lines = append(lines, "banana   apple")
	}
	path := writeQueries(t, lines...)

	counting := &CountingSearch{Index: sampleIndex()}
	results, err := Concurrent(path, counting, true, 8, nil)
	require.NoError(t, err)

	ordered := results.Ordered()
	require.Len(t, ordered, 1)
	require.Equal(t, 1, counting.Calls)
}

func TestResultsOrderedSortsByCanonicalAscending(t *testing.T) {
	r := NewResults()
	require.True(t, r.TryReserve("zebra"))
	r.Set("zebra", nil)
	require.True(t, r.TryReserve("apple"))
	r.Set("apple", nil)

	ordered := r.Ordered()
	require.Equal(t, []string{"apple", "zebra"}, []string{ordered[0].Canonical, ordered[1].Canonical})
}

func TestTryReserveSecondCallFails(t *testing.T) {
	r := NewResults()
	require.True(t, r.TryReserve("apple"))
	require.False(t, r.TryReserve("apple"))
}
