package derive

import "github.com/specialistvlad/flightderive/internal/signal"

// AlignFunc resamples a signal to a frequency and offset.
type AlignFunc func(s *signal.Signal, frequency, offset float64) *signal.Signal

type cacheKey struct {
	name      string
	frequency float64
	offset    float64
}

// AlignmentCache memoizes resampled dependencies for one pass. Two nodes that
// need the same dependency at the same timing share one resampled value.
type AlignmentCache struct {
	align   AlignFunc
	entries map[cacheKey]*signal.Signal
	hits    int
	misses  int
}

// NewAlignmentCache returns an empty cache that resamples with align.
func NewAlignmentCache(align AlignFunc) *AlignmentCache {
	if align == nil {
		align = signal.Align
	}
	return &AlignmentCache{
		align:   align,
		entries: make(map[cacheKey]*signal.Signal),
	}
}

// Aligned returns s at the requested timing, resampling at most once per
// (name, frequency, offset).
func (c *AlignmentCache) Aligned(s *signal.Signal, frequency, offset float64) (*signal.Signal, bool) {
	key := cacheKey{name: s.Name, frequency: frequency, offset: offset}
	if hit, ok := c.entries[key]; ok {
		c.hits++
		return hit, true
	}
	c.misses++
	aligned := c.align(s, frequency, offset)
	c.entries[key] = aligned
	return aligned, false
}

// Len returns the number of cached entries.
func (c *AlignmentCache) Len() int { return len(c.entries) }

// Hits returns how many lookups were served from the cache.
func (c *AlignmentCache) Hits() int { return c.hits }

// Misses returns how many lookups had to resample.
func (c *AlignmentCache) Misses() int { return c.misses }
