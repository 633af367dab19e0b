// Command invexo builds an inverted index over a filesystem subtree or a
// crawled website, answers a file of queries against it, and writes the
// index, counts, and results as JSON.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"invexo/internal/build"
	"invexo/internal/crawl"
	"invexo/internal/invindex"
	"invexo/internal/metrics"
	"invexo/internal/output"
	"invexo/internal/query"
)

func main() {
	app := &cli.App{
		Name:  "invexo",
		Usage: "build an inverted index from files or a crawl, then answer queries against it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "index files under this path"},
			&cli.StringFlag{Name: "url", Usage: "crawl from this seed URL"},
			&cli.StringFlag{Name: "limit", Usage: "max URLs to crawl", Value: "50"},
			&cli.StringFlag{Name: "threads", Usage: "enable parallel mode with N workers", Value: "5"},
			&cli.StringFlag{Name: "index", Usage: "emit index JSON", Value: "index.json"},
			&cli.StringFlag{Name: "counts", Usage: "emit counts JSON", Value: "counts.json"},
			&cli.StringFlag{Name: "query", Usage: "read queries from this file"},
			&cli.BoolFlag{Name: "exact", Usage: "exact matching instead of prefix"},
			&cli.StringFlag{Name: "results", Usage: "emit results JSON", Value: "results.json"},
			&cli.StringFlag{Name: "metrics", Usage: "serve Prometheus metrics on this address"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// intFlag parses name as a base-10 integer, falling back to def and
// logging the fallback on a malformed value — flag.Int and
// cli.IntFlag both hard-fail on bad input, which this CLI must not do.
func intFlag(c *cli.Context, name string, def int) int {
	raw := c.String(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invexo: -%s=%q is not a valid integer, using default %d", name, raw, def)
		return def
	}
	return n
}

func run(c *cli.Context) error {
	var m *metrics.Metrics
	if addr := c.String("metrics"); addr != "" {
		m = metrics.New()
		if _, err := metrics.Serve(addr); err != nil {
			fmt.Fprintf(os.Stderr, "invexo: could not start metrics server on %s: %v\n", addr, err)
		} else {
			log.Printf("invexo: serving metrics on %s", addr)
		}
	}

	threads := intFlag(c, "threads", 5)
	parallel := c.IsSet("threads")
	limit := intFlag(c, "limit", 50)

	// The crawler always runs a worker pool, so a crawl gets the locked index
	// even without -threads.
	idx := buildSharedIndex(parallel || c.String("url") != "")

	switch {
	case c.String("path") != "":
		indexPath(c.String("path"), idx, parallel, threads, m)
	case c.String("url") != "":
		crawlSeed(c.String("url"), idx, limit, threads, m)
	default:
		fmt.Fprintln(os.Stderr, "usage: invexo -path <dir> | -url <seed> [-query <file>] [-exact] [-index out] [-counts out] [-results out]")
	}

	if err := output.WriteIndex(c.String("index"), idx); err != nil {
		fmt.Fprintf(os.Stderr, "invexo: could not write %s: %v\n", c.String("index"), err)
	}
	if err := output.WriteCounts(c.String("counts"), idx); err != nil {
		fmt.Fprintf(os.Stderr, "invexo: could not write %s: %v\n", c.String("counts"), err)
	}

	if queryPath := c.String("query"); queryPath != "" {
		runQueries(queryPath, idx, c.Bool("exact"), parallel, threads, c.String("results"), m)
	}

	return nil
}

func buildSharedIndex(parallel bool) invindex.Index {
	if parallel {
		return invindex.NewLocked()
	}
	return invindex.New()
}

func indexPath(path string, idx invindex.Index, parallel bool, threads int, m *metrics.Metrics) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invexo: -path %s: %v\n", path, err)
		return
	}
	if !info.IsDir() {
		fmt.Fprintf(os.Stderr, "invexo: -path %s is not a directory\n", path)
		return
	}

	var buildErr error
	if parallel {
		buildErr = build.Parallel(path, idx, threads, m)
	} else {
		buildErr = build.Sequential(path, idx, m)
	}
	if buildErr != nil {
		fmt.Fprintf(os.Stderr, "invexo: building index from %s: %v\n", path, buildErr)
	}
}

func crawlSeed(seed string, idx invindex.Index, limit, threads int, m *metrics.Metrics) {
	c := crawl.NewCrawler(idx, limit, 3, threads)
	if m != nil {
		c.WithMetrics(m)
	}
	c.Run(seed)
}

func runQueries(path string, idx invindex.Index, exact, parallel bool, threads int, resultsPath string, m *metrics.Metrics) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invexo: -query %s: %v\n", path, err)
		return
	}
	if info.IsDir() {
		fmt.Fprintf(os.Stderr, "invexo: -query %s is a directory, not a file\n", path)
		return
	}

	var results *query.Results
	if parallel {
		results, err = query.Concurrent(path, idx, exact, threads, m)
	} else {
		results, err = query.Sequential(path, idx, exact, m)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "invexo: running queries from %s: %v\n", path, err)
		return
	}

	if err := output.WriteResults(resultsPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "invexo: could not write %s: %v\n", resultsPath, err)
	}
}
