// Package textnorm turns raw text into the stems the rest of the system
// indexes and queries on: split on non-letter boundaries, lowercase, drop
// empties, stem. The tokenizer and stemmer proper are external
// collaborators (golang.org/x/net/html for markup, porter2 for stemming);
// this package is the thin normalization wrapper over them.
package textnorm

import (
	"iter"
	"sort"
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
	"golang.org/x/net/html"
)

// Normalize returns a lazy sequence of stems produced from text: split on
// non-letter boundaries, lowercase, drop empties, stem.
func Normalize(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		var cur strings.Builder
		flush := func() bool {
			if cur.Len() == 0 {
				return true
			}
			word := strings.ToLower(cur.String())
			cur.Reset()
			stem := porter2.Stem(word)
			if stem == "" {
				return true
			}
			return yield(stem)
		}

		for _, r := range text {
			if unicode.IsLetter(r) {
				cur.WriteRune(r)
				continue
			}
			if !flush() {
				return
			}
		}
		flush()
	}
}

// UniqueStems returns the sorted, deduplicated set of stems in text — the
// canonical form used to build and compare queries.
func UniqueStems(text string) []string {
	seen := make(map[string]struct{})
	for stem := range Normalize(text) {
		seen[stem] = struct{}{}
	}

	stems := make([]string, 0, len(seen))
	for stem := range seen {
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	return stems
}

// StripHTML extracts the page title and the visible text of an HTML
// document, skipping script/style/noscript content. Used by the crawler
// to get normalizable text from a fetched page.
func StripHTML(document string) (title, text string) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return title, b.String()
}
