package crawl

import "net/url"

// CleanURL strips any fragment and re-encodes the query component so that
// equivalent URLs compare equal as strings. On parse failure it returns raw
// unchanged — a malformed link shouldn't abort the crawl.
func CleanURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	if u.RawQuery != "" {
		query, err := url.ParseQuery(u.RawQuery)
		if err == nil {
			u.RawQuery = query.Encode()
		}
	}
	return u.String()
}
