package metrics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

// DefaultCacheSize is the number of summaries an Engine remembers
const DefaultCacheSize = 256

// Engine memoizes summaries per (segments, FTP) pair. Results are identical to
// ComputeSummary; the cache only saves recomputation when the same workout is
// rendered repeatedly. Safe for concurrent use.
type Engine struct {
	cache  *lru.Cache[string, Summary]
	logger *log.Logger
}

// NewEngine creates an Engine holding up to size summaries
func NewEngine(size int, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		panic("Engine: logger cannot be nil")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, Summary](size)
	if err != nil {
		return nil, fmt.Errorf("creating summary cache: %w", err)
	}
	return &Engine{cache: cache, logger: logger}, nil
}

// Summary returns the summary for segments at ftpWatts
func (e *Engine) Summary(segments []workout.Segment, ftpWatts float64) Summary {
	key := fingerprint(segments, ftpWatts)
	if cached, ok := e.cache.Get(key); ok {
		return cached.clone()
	}
	summary := ComputeSummary(segments, ftpWatts)
	e.cache.Add(key, summary)
	e.logger.Printf("Engine: computed summary for %d segments at %.0f W (tss=%d np=%d)",
		len(segments), ftpWatts, summary.TSS, summary.NP)
	return summary.clone()
}

// Timeline returns the chart points for segments. Timelines are cheap and not cached.
func (e *Engine) Timeline(segments []workout.Segment) []TimelinePoint {
	return Timeline(segments)
}

// CachedSummaries returns how many summaries are currently memoized
func (e *Engine) CachedSummaries() int {
	return e.cache.Len()
}

func fingerprint(segments []workout.Segment, ftpWatts float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "ftp=%g;", ftpWatts)
	for _, seg := range segments {
		fmt.Fprintf(h, "%#v;", seg)
	}
	return hex.EncodeToString(h.Sum(nil))
}
