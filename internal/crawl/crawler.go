// Package crawl implements the bounded, breadth-first web crawler: fetch a
// page, extract its links, admit at most a fixed number of distinct URLs
// into the crawl, and fold each page's text into a shared index.
package crawl

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"invexo/internal/invindex"
	"invexo/internal/metrics"
	"invexo/internal/textnorm"
	"invexo/internal/workqueue"
)

// Crawler drives a bounded breadth-first crawl from a single seed URL into
// a shared index. Page admission is gated by a single shared consumed set
// so at most Limit distinct URLs are ever fetched, no matter how many
// worker goroutines are racing to discover them.
type Crawler struct {
	Limit     int
	Redirects int
	Fetcher   *Fetcher

	mu       sync.Mutex
	consumed map[string]struct{}

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter

	queue  *workqueue.Queue
	shared invindex.Index

	metrics *metrics.Metrics
}

// NewCrawler returns a Crawler bounded to at most limit distinct pages,
// following up to redirects redirects per fetch, using workers goroutines
// to fetch pages concurrently and merge their text into shared.
func NewCrawler(shared invindex.Index, limit, redirects, workers int) *Crawler {
	if limit < 1 {
		limit = 1
	}
	return &Crawler{
		Limit:     limit,
		Redirects: redirects,
		Fetcher:   NewFetcher(nil),
		consumed:  make(map[string]struct{}),
		limiters:  make(map[string]*rate.Limiter),
		queue:     workqueue.New(workers),
		shared:    shared,
	}
}

// WithMetrics installs m so the crawl records LinksDiscovered,
// PagesCrawledTotal, and the crawl pool's pending-task gauge as it runs. It
// must be called before Run, since nothing synchronizes it against an
// already-running worker. It returns c for chaining.
func (c *Crawler) WithMetrics(m *metrics.Metrics) *Crawler {
	c.metrics = m
	c.queue.SetObserver(func(pending int) {
		m.WorkQueuePending.WithLabelValues("crawl").Set(float64(pending))
	})
	return c
}

// Run crawls seed and every link reachable from it, breadth-first, up to
// Limit distinct pages, and blocks until the crawl is exhausted.
func (c *Crawler) Run(seed string) {
	defer c.queue.Shutdown()

	if c.admit(seed) {
		c.submit(seed)
	}
	c.queue.Finish()
}

// admit is the atomic check-and-insert against the shared consumed set: it
// reports whether u is newly admitted, and is the only way a URL enters the
// crawl, so the Limit bound is enforced exactly once no matter how many
// goroutines race to discover the same link.
func (c *Crawler) admit(u string) bool {
	clean := CleanURL(u)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.consumed) >= c.Limit {
		return false
	}
	if _, ok := c.consumed[clean]; ok {
		return false
	}
	c.consumed[clean] = struct{}{}
	return true
}

func (c *Crawler) submit(u string) {
	c.queue.Submit(func() {
		c.crawlTask(u)
	})
}

// crawlTask fetches u, extracts its links and admits+submits any
// newly-discovered children before stripping and indexing u's own text —
// so a page's outbound links are in flight before the (possibly slower)
// text-extraction-and-merge step for the same page completes.
func (c *Crawler) crawlTask(u string) {
	c.wait(u)

	body, err := c.Fetcher.Fetch(u, c.Redirects)
	if err != nil {
		log.Printf("crawl: fetch %s: %v", u, err)
		return
	}
	if body == "" {
		return
	}
	if c.metrics != nil {
		c.metrics.PagesCrawledTotal.Inc()
	}

	links := ExtractLinks(u, body)
	if c.metrics != nil {
		c.metrics.LinksDiscovered.Add(float64(len(links)))
	}
	for _, link := range links {
		if c.admit(link) {
			c.submit(link)
		}
	}

	_, text := textnorm.StripHTML(body)

	local := invindex.New()
	counter := 0
	for stem := range textnorm.Normalize(text) {
		counter++
		local.Add(stem, u, counter)
	}
	c.shared.Merge(local)
}

// wait blocks until the per-host politeness limiter for u's host admits
// one more request. A malformed URL has no host to throttle and proceeds
// immediately.
func (c *Crawler) wait(u string) {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return
	}
	if err := c.limiterFor(parsed.Host).Wait(context.Background()); err != nil {
		log.Printf("crawl: rate limiter wait for %s: %v", parsed.Host, err)
	}
}

func (c *Crawler) limiterFor(host string) *rate.Limiter {
	c.limiterMu.Lock()
	defer c.limiterMu.Unlock()

	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(200*time.Millisecond), 1)
		c.limiters[host] = limiter
	}
	return limiter
}
