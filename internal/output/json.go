// Package output writes the index, counts, and query results as stable,
// pretty-printed JSON artifacts.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"invexo/internal/invindex"
	"invexo/internal/query"
)

// ResultJSON is one ranked hit in a results.json entry.
type ResultJSON struct {
	Where string `json:"where"`
	Count int    `json:"count"`
	Score string `json:"score"`
}

// WriteIndex writes index.json: word -> location -> ascending positions.
// Key ordering within each object is encoding/json's own byte-wise
// ascending sort of map keys, which is exactly the case-sensitive
// ascending order the index already maintains internally.
func WriteIndex(path string, index invindex.Index) error {
	out := make(map[string]map[string][]int)
	for _, word := range index.Words() {
		locations := make(map[string][]int)
		for _, location := range index.Locations(word) {
			locations[location] = index.Positions(word, location)
		}
		out[word] = locations
	}
	return writeJSON(path, out)
}

// WriteCounts writes counts.json: location -> word count.
func WriteCounts(path string, index invindex.Index) error {
	return writeJSON(path, index.Counts())
}

// WriteResults writes results.json: canonical query string -> ranked hits,
// each score formatted to eight decimal places.
func WriteResults(path string, results *query.Results) error {
	out := make(map[string][]ResultJSON)
	for _, entry := range results.Ordered() {
		hits := make([]ResultJSON, len(entry.Results))
		for i, r := range entry.Results {
			hits[i] = ResultJSON{
				Where: r.Where,
				Count: r.Count,
				Score: fmt.Sprintf("%.8f", r.Score),
			}
		}
		out[entry.Canonical] = hits
	}
	return writeJSON(path, out)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "\t")
	return enc.Encode(v)
}
