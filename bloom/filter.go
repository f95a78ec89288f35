// Package bloom approximates distinct-URL counts with Bloom filters.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Default sizing for a single crawl's page set.
const (
	DefaultCapacity = 1_000_000
	DefaultFPRate   = 0.01
)

// Counter tracks approximately how many distinct URLs it has observed
// without keeping the URLs themselves. It is safe for concurrent use.
type Counter struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewCounter creates a Counter sized for n expected URLs
// with the given false positive rate.
func NewCounter(n uint, fpRate float64) *Counter {
	return &Counter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Observe records url and reports whether it was (probably) new.
// False positives are possible; false negatives are not.
func (c *Counter) Observe(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.f.TestAndAddString(url)
}

// Seen returns true if url might have been observed.
func (c *Counter) Seen(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.f.TestString(url)
}

// Count returns the approximate number of distinct URLs observed.
func (c *Counter) Count() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint(c.f.ApproximatedSize())
}
