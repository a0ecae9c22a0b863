package bucket

import (
	"sync/atomic"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// guessCache keeps recent guess rankings keyed by the raw query text.
// Any change to the table must purge it.
type guessCache struct {
	rankings *lru.Cache[string, []Score]
	maxSize  int
	hits     atomic.Int64
	misses   atomic.Int64
}

// newGuessCache returns nil for size 0, which disables caching
func newGuessCache(size int) (*guessCache, error) {
	if size == 0 {
		return nil, nil
	}
	rankings, err := lru.New[string, []Score](size)
	if err != nil {
		return nil, err
	}
	return &guessCache{rankings: rankings, maxSize: size}, nil
}

func (gc *guessCache) get(text string) ([]Score, bool) {
	if gc == nil {
		return nil, false
	}
	ranking, ok := gc.rankings.Get(text)
	if !ok {
		gc.misses.Add(1)
		return nil, false
	}
	gc.hits.Add(1)
	return ranking, true
}

func (gc *guessCache) add(text string, ranking []Score) {
	if gc == nil {
		return
	}
	gc.rankings.Add(text, ranking)
}

func (gc *guessCache) purge() {
	if gc == nil {
		return
	}
	if n := gc.rankings.Len(); n > 0 {
		gc.rankings.Purge()
		log.Debugf("Purged %d cached guesses", n)
	}
}

func (gc *guessCache) stats() (size, hits, misses int) {
	if gc == nil {
		return 0, 0, 0
	}
	return gc.rankings.Len(), int(gc.hits.Load()), int(gc.misses.Load())
}
