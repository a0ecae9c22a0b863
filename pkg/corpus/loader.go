/*
Package corpus reads labeled text samples from disk and feeds them to a learner.

Files are parsed concurrently but samples always come back in sorted path order,
so training the same corpus twice builds the same table.
*/
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bastiangx/wordbucket/pkg/bucket"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Sample is one labeled text
type Sample struct {
	Label  string
	Text   string
	Source string
}

// LoaderStats provides statistics about a load
type LoaderStats struct {
	Files    int
	Samples  int
	Duration time.Duration
}

// ListFiles returns the corpus files below root in sorted order.
// Files with unknown extensions are skipped.
func ListFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, err := DetectFormat(path); err != nil {
			log.Debugf("Skipping %s: %v", path, err)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan corpus directory %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir parses every corpus file below root with at most workers files in flight
func LoadDir(ctx context.Context, root string, workers int) ([]Sample, error) {
	files, err := ListFiles(root)
	if err != nil {
		return nil, err
	}
	return readFiles(ctx, files, workers)
}

// Load reads files and directories. Explicit files must have a known format.
func Load(ctx context.Context, paths []string, workers int) ([]Sample, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat corpus path %s: %w", path, err)
		}
		if !info.IsDir() {
			if _, err := DetectFormat(path); err != nil {
				return nil, err
			}
			files = append(files, path)
			continue
		}
		dirFiles, err := ListFiles(path)
		if err != nil {
			return nil, err
		}
		files = append(files, dirFiles...)
	}
	return readFiles(ctx, files, workers)
}

func readFiles(ctx context.Context, files []string, workers int) ([]Sample, error) {
	if workers < 1 {
		workers = 1
	}
	start := time.Now()
	results := make([][]Sample, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			samples, err := ReadFile(file)
			if err != nil {
				return err
			}
			results[i] = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	samples := make([]Sample, 0, total)
	for _, r := range results {
		samples = append(samples, r...)
	}

	stats := LoaderStats{Files: len(files), Samples: total, Duration: time.Since(start)}
	log.Debug("Corpus loaded", "files", stats.Files, "samples", stats.Samples, "took", stats.Duration)
	return samples, nil
}

// Train feeds samples into the learner in order and returns how many carried both text and label
func Train(learner bucket.Learner, samples []Sample) int {
	applied := 0
	for _, s := range samples {
		if s.Text == "" || s.Label == "" {
			continue
		}
		learner.Learn(s.Text, s.Label)
		applied++
	}
	return applied
}
