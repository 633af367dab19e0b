package crawl

import (
	"net/url"
	"regexp"
)

// anchorHrefPattern is a tolerant, case-insensitive match of an anchor
// tag's href attribute — spec.md §4.9 calls for a regex scan here rather
// than a full HTML tree walk (golang.org/x/net/html is used elsewhere, for
// the teacher-style visible-text extraction in textnorm.StripHTML).
var anchorHrefPattern = regexp.MustCompile(`(?is)<a\b[^>]*?\bhref\s*=\s*["']([^"']*)["'][^>]*>`)

// ExtractLinks returns, in source order, every anchor href in html resolved
// against base, with fragments stripped and the query component
// re-encoded.
func ExtractLinks(base, html string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	matches := anchorHrefPattern.FindAllStringSubmatch(html, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		resolved, err := baseURL.Parse(m[1])
		if err != nil {
			continue
		}
		links = append(links, CleanURL(resolved.String()))
	}
	return links
}
