// Package build implements sequential and parallel corpus ingestion over
// a filesystem subtree: walk, filter by extension, tokenize/stem each
// file's text into an index.
package build

import (
	"bufio"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"invexo/internal/invindex"
	"invexo/internal/metrics"
	"invexo/internal/textnorm"
	"invexo/internal/workqueue"
)

// AddFile opens path in UTF-8, reads it line by line, and adds each
// token's stem to index at the absolute path location with a position
// counter that increases across the whole file.
func AddFile(path string, index invindex.Index) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	f, err := os.Open(abs)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	counter := 0
	for scanner.Scan() {
		for stem := range textnorm.Normalize(scanner.Text()) {
			counter++
			index.Add(stem, abs, counter)
		}
	}
	return scanner.Err()
}

// hasTextExtension matches spec.md's ".txt"/".text" filter, case-
// insensitive, against the final path segment only. It does not look at the
// entry's type; the walks skip directories (such as one named "notes.txt")
// before calling it.
func hasTextExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || ext == ".text"
}

// Sequential walks root depth-first and indexes every matching file
// directly into index. A per-file read failure is logged and skipped; it
// does not abort the build. If m is non-nil, it records one
// FilesIndexedTotal increment per successfully-added file and the build's
// total wall-clock duration under the "sequential" mode label.
func Sequential(root string, index invindex.Index, m *metrics.Metrics) error {
	start := time.Now()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("build: walk error at %s: %v", path, err)
			return nil
		}
		if d.IsDir() || !hasTextExtension(d.Name()) {
			return nil
		}
		if err := AddFile(path, index); err != nil {
			log.Printf("build: skipping %s: %v", path, err)
			return nil
		}
		if m != nil {
			m.FilesIndexedTotal.Inc()
		}
		return nil
	})
	if m != nil {
		m.BuildDuration.WithLabelValues("sequential").Observe(time.Since(start).Seconds())
	}
	return err
}

// Parallel walks root and, for each matching file, submits a task that
// builds a fresh thread-local InvertedIndex, indexes the whole file into
// it, then merges it into the shared index under a single write lock
// acquisition — avoiding per-token contention on the shared write lock. If
// m is non-nil, it records the same per-file and build-duration metrics as
// Sequential (mode label "parallel"), plus the build pool's pending-task
// gauge.
func Parallel(root string, shared invindex.Index, workers int, m *metrics.Metrics) error {
	start := time.Now()

	queue := workqueue.New(workers)
	defer queue.Shutdown()
	if m != nil {
		queue.SetObserver(func(pending int) {
			m.WorkQueuePending.WithLabelValues("build").Set(float64(pending))
		})
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("build: walk error at %s: %v", path, err)
			return nil
		}
		if d.IsDir() || !hasTextExtension(d.Name()) {
			return nil
		}

		file := path
		queue.Submit(func() {
			local := invindex.New()
			if err := AddFile(file, local); err != nil {
				log.Printf("build: skipping %s: %v", file, err)
				return
			}
			shared.Merge(local)
			if m != nil {
				m.FilesIndexedTotal.Inc()
			}
		})
		return nil
	})

	queue.Finish()
	if m != nil {
		m.BuildDuration.WithLabelValues("parallel").Observe(time.Since(start).Seconds())
	}
	return walkErr
}
