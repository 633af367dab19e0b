package crawl

import (
	"io"
	"net/http"
	"strings"
)

// Fetcher performs HTTPS/HTTP GETs and follows redirects up to a depth
// limit, returning a page's body only when it's HTML.
type Fetcher struct {
	Client *http.Client
}

// NewFetcher returns a Fetcher using client, or a default client that
// disables automatic redirect-following, if nil — redirects are handled
// manually by Fetch so the configured depth limit is honored.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &Fetcher{Client: client}
}

// Fetch performs one GET against url. It returns the body iff the
// response status is 200 and Content-Type starts with "text/html"
// (case-insensitive, first value). If the status is 300-399, a Location
// header is present, and redirects > 0, it recursively fetches Location
// with redirects-1. Otherwise it returns ("", nil) — there is no page to
// index, and that by itself is not an error.
func (f *Fetcher) Fetch(url string, redirects int) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		if location != "" && redirects > 0 {
			return f.Fetch(location, redirects-1)
		}
		return "", nil
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	contentType := resp.Header.Get("Content-Type")
	if first := strings.SplitN(contentType, ";", 2)[0]; !strings.HasPrefix(strings.ToLower(strings.TrimSpace(first)), "text/html") {
		return "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
