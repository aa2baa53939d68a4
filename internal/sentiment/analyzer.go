package sentiment

import (
	"crypto/sha256"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/travelrec/internal/metrics"
)

// DefaultCacheSize is used when NewAnalyzer receives a non-positive size
const DefaultCacheSize = 4096

// Analyzer memoizes Analyze results in a bounded LRU cache.
// It is safe for concurrent use.
type Analyzer struct {
	cache *lru.Cache[[32]byte, Result]
}

// NewAnalyzer creates an analyzer caching up to size results
func NewAnalyzer(size int) *Analyzer {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, Result](size)
	if err != nil {
		// Only fails for non-positive sizes
		cache, _ = lru.New[[32]byte, Result](DefaultCacheSize)
	}
	return &Analyzer{cache: cache}
}

// Analyze returns the cached result for text, computing it on a miss
func (a *Analyzer) Analyze(text string) Result {
	key := sha256.Sum256([]byte(strings.ToLower(text)))
	if res, ok := a.cache.Get(key); ok {
		metrics.SentimentCacheHits.Inc()
		return res
	}
	metrics.SentimentCacheMisses.Inc()

	res := Analyze(text)
	a.cache.Add(key, res)
	return res
}

// Len returns the number of cached results
func (a *Analyzer) Len() int {
	return a.cache.Len()
}

// Purge empties the cache
func (a *Analyzer) Purge() {
	a.cache.Purge()
}
