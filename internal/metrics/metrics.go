// Package metrics defines the Prometheus collectors for a run of the
// indexer/crawler/query pipeline and an HTTP handler for scraping them.
package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors shared across a single run.
type Metrics struct {
	FilesIndexedTotal prometheus.Counter
	PagesCrawledTotal prometheus.Counter
	LinksDiscovered   prometheus.Counter
	QueriesTotal      *prometheus.CounterVec
	QueryLatency      prometheus.Histogram
	WorkQueuePending  *prometheus.GaugeVec
	BuildDuration     *prometheus.HistogramVec
}

// New creates and registers the run's collectors.
func New() *Metrics {
	m := &Metrics{
		FilesIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "invexo_files_indexed_total",
				Help: "Total text files added to the index.",
			},
		),
		PagesCrawledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "invexo_pages_crawled_total",
				Help: "Total HTML pages fetched and indexed by the crawler.",
			},
		),
		LinksDiscovered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "invexo_links_discovered_total",
				Help: "Total links extracted from crawled pages, admitted or not.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invexo_queries_total",
				Help: "Total queries answered, by whether they were a de-duplicated canonical form.",
			},
			[]string{"outcome"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "invexo_query_latency_seconds",
				Help:    "Time spent inside a single Index.Search call.",
				Buckets: prometheus.DefBuckets,
			},
		),
		WorkQueuePending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "invexo_workqueue_pending",
				Help: "Tasks dequeued but not yet completed, by pool.",
			},
			[]string{"pool"},
		),
		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "invexo_build_duration_seconds",
				Help:    "Wall-clock time for a full index build, by mode.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
	}

	prometheus.MustRegister(
		m.FilesIndexedTotal,
		m.PagesCrawledTotal,
		m.LinksDiscovered,
		m.QueriesTotal,
		m.QueryLatency,
		m.WorkQueuePending,
		m.BuildDuration,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts a scrape server on addr and returns once it's listening;
// the caller is responsible for shutting it down (or simply letting the
// process exit, since it carries no state worth flushing).
func Serve(addr string) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Addr: addr, Handler: mux}
	go srv.Serve(ln)
	return srv, nil
}
