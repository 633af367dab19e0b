package textnorm

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, text string) []string {
	t.Helper()
	var out []string
	for stem := range Normalize(text) {
		out = append(out, stem)
	}
	return out
}

func TestNormalizeSplitsLowercasesAndStems(t *testing.T) {
	stems := collect(t, "Running Runner runs")
	require.NotEmpty(t, stems)
	for _, s := range stems {
		require.Equal(t, s, porterLowercaseInvariant(s))
	}
}

func porterLowercaseInvariant(s string) string {
	// every stem must already be lowercase
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return "NOT-LOWER"
		}
	}
	return s
}

func TestNormalizeDropsNonLetterBoundaries(t *testing.T) {
	stems := collect(t, "apple, banana; cherry123")
	require.Len(t, stems, 3)
}

func TestNormalizeEmptyText(t *testing.T) {
	require.Empty(t, collect(t, ""))
	require.Empty(t, collect(t, "123 456 !!!"))
}

func TestUniqueStemsSortedAndDeduped(t *testing.T) {
	stems := UniqueStems("banana apple banana")
	require.True(t, slices.IsSorted(stems))
	require.Len(t, stems, 2)
}

func TestUniqueStemsEmptyLine(t *testing.T) {
	require.Empty(t, UniqueStems("   "))
}

func TestStripHTMLExtractsTitleAndText(t *testing.T) {
	doc := `<html><head><title>Hello World</title></head>
		<body><script>ignored()</script><p>Visible text</p></body></html>`

	title, text := StripHTML(doc)
	require.Equal(t, "Hello World", title)
	require.Contains(t, text, "Visible text")
	require.NotContains(t, text, "ignored()")
}
