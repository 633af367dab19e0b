package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"invexo/internal/invindex"
	"invexo/internal/query"
)

func TestWriteIndexProducesNestedWordLocationPositions(t *testing.T) {
	idx := invindex.New()
	idx.Add("apple", "b.txt", 2)
	idx.Add("apple", "a.txt", 1)
	idx.Add("apple", "a.txt", 3)

	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, WriteIndex(path, idx))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]map[string][]int
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, []int{1, 3}, got["apple"]["a.txt"])
	require.Equal(t, []int{2}, got["apple"]["b.txt"])
}

func TestWriteCountsProducesLocationCounts(t *testing.T) {
	idx := invindex.New()
	idx.Add("apple", "a.txt", 5)

	path := filepath.Join(t.TempDir(), "counts.json")
	require.NoError(t, WriteCounts(path, idx))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]int
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, 5, got["a.txt"])
}

func TestWriteResultsFormatsScoreToEightDecimals(t *testing.T) {
	results := query.NewResults()
	results.TryReserve("apple")
	results.Set("apple", []invindex.SearchResult{{Where: "a.txt", Count: 2, Score: 1.0 / 3.0}})

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, WriteResults(path, results))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string][]ResultJSON
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got["apple"], 1)
	require.Equal(t, "a.txt", got["apple"][0].Where)
	require.Equal(t, "0.33333333", got["apple"][0].Score)
}
