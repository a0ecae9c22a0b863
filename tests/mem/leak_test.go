//go:build test

package mem

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/bastiangx/wordbucket/pkg/bucket"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var sentences = []struct{ label, text string }{
	{"book", "The child reads a classical novel"},
	{"book", "Miss Darlington reads a book in the afternoon"},
	{"magazine", "He reads a generonormative magazine"},
	{"magazine", "In the filthy store she reads magazines"},
}

var queries = []string{
	"Miss so and so visits the classical library",
	"He goes to the store and reads filthy publications",
	"classical",
	"reads",
	"nothing here",
}

func TestConcurrentLearnGuess(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 1000},
		{workers: 4, iterationsPerWorker: 250},
		{workers: 16, iterationsPerWorker: 64},
	}

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("workers_%d", cfg.workers), func(t *testing.T) {
			c, err := bucket.New(bucket.WithCacheSize(8))
			require.NoError(t, err)

			var wg sync.WaitGroup
			for w := 0; w < cfg.workers; w++ {
				wg.Add(1)
				go func(worker int) {
					defer wg.Done()
					for i := 0; i < cfg.iterationsPerWorker; i++ {
						s := sentences[(worker+i)%len(sentences)]
						c.Learn(s.text, s.label)
						c.Guess(queries[i%len(queries)])
					}
				}(w)
			}
			wg.Wait()

			total := 0
			for _, e := range c.Dump() {
				total += e.Count
			}
			assert.Equal(t, c.Stats().Total, total)

			// every sentence holds "reads" once, so no learn may be lost
			reads := 0
			for _, s := range c.Scores("reads") {
				reads += s.Count
			}
			assert.Equal(t, cfg.workers*cfg.iterationsPerWorker, reads)
		})
	}
}

func TestMemoryStableOnRepeatedGuess(t *testing.T) {
	c, err := bucket.New()
	require.NoError(t, err)
	for _, s := range sentences {
		c.Learn(s.text, s.label)
	}

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	for i := 0; i < 10000; i++ {
		c.Guess(queries[i%len(queries)])
	}

	runtime.GC()
	runtime.ReadMemStats(&after)

	// the table does not change, so the live heap must not grow with the number of guesses
	growth := int64(after.HeapAlloc) - int64(before.HeapAlloc)
	t.Logf("heap growth after 10000 guesses: %d bytes", growth)
	assert.Less(t, growth, int64(1<<20))
}
