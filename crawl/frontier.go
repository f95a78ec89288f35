package crawl

import (
	"slices"
	"sync"

	"github.com/fwojciec/sitepdf"
	"github.com/fwojciec/sitepdf/bloom"
)

// Frontier is the in-memory sitemap frontier for a single crawl.
// A URL moves from pending to in flight to processed and never back.
// It is safe for concurrent use by multiple goroutines, and TakeBatch
// hands out each sitemap URL at most once.
type Frontier struct {
	mu        sync.Mutex
	pending   []string
	queued    map[string]bool
	inflight  map[string]bool
	processed map[string]bool
	pdfs      map[string]bool
	errors    []string
	digests   map[uint64]bool
	pages     *bloom.Counter
}

// NewFrontier creates an empty Frontier. The page counter is sized for
// n distinct page URLs at the given false positive rate.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		queued:    make(map[string]bool),
		inflight:  make(map[string]bool),
		processed: make(map[string]bool),
		pdfs:      make(map[string]bool),
		digests:   make(map[uint64]bool),
		pages:     bloom.NewCounter(n, fpRate),
	}
}

// MarkPending queues urls that are not already pending, in flight or processed.
func (f *Frontier) MarkPending(urls []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueue(urls)
}

// enqueue must be called with mu held.
func (f *Frontier) enqueue(urls []string) int {
	n := 0
	for _, u := range urls {
		if u == "" || f.queued[u] || f.inflight[u] || f.processed[u] {
			continue
		}
		f.queued[u] = true
		f.pending = append(f.pending, u)
		n++
	}
	return n
}

// TakeBatch drains the pending queue in insertion order.
func (f *Frontier) TakeBatch() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	batch := make([]string, 0, len(f.pending))
	for _, u := range f.pending {
		delete(f.queued, u)
		if f.processed[u] {
			continue
		}
		f.inflight[u] = true
		batch = append(batch, u)
	}
	f.pending = nil
	return batch
}

// MarkProcessed moves url to the processed set.
func (f *Frontier) MarkProcessed(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markProcessed(url)
}

func (f *Frontier) markProcessed(url string) {
	delete(f.inflight, url)
	delete(f.queued, url)
	f.processed[url] = true
}

// RecordPDFs adds urls to the PDF set.
func (f *Frontier) RecordPDFs(urls []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range urls {
		f.pdfs[u] = true
	}
}

// RecordPages counts urls toward the approximate page total.
func (f *Frontier) RecordPages(urls []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range urls {
		f.pages.Observe(u)
	}
}

// RecordError appends msg to the error list.
func (f *Frontier) RecordError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, msg)
}

// Complete marks url processed, records the document's PDFs and pages,
// and queues child sitemaps nobody has claimed yet.
func (f *Frontier) Complete(url string, doc *sitepdf.SitemapDocument) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.markProcessed(url)
	if doc == nil {
		return 0
	}
	for _, u := range doc.PDFs {
		f.pdfs[u] = true
	}
	for _, u := range doc.Pages {
		f.pages.Observe(u)
	}
	return f.enqueue(doc.Sitemaps)
}

// ClaimDigest returns true the first time digest is seen.
func (f *Frontier) ClaimDigest(digest uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.digests[digest] {
		return false
	}
	f.digests[digest] = true
	return true
}

// Pending returns the number of queued URLs.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Processed returns the number of processed URLs.
func (f *Frontier) Processed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.processed)
}

// Counts returns the current processed, pending, PDF and error totals.
func (f *Frontier) Counts() (processed, pending, pdfs, errs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.processed), len(f.pending), len(f.pdfs), len(f.errors)
}

// Snapshot returns a sorted copy of the accumulated results.
func (f *Frontier) Snapshot(baseURL string) *sitepdf.Report {
	f.mu.Lock()
	defer f.mu.Unlock()

	return &sitepdf.Report{
		BaseURL:           baseURL,
		PDFURLs:           sortedKeys(f.pdfs),
		ProcessedSitemaps: sortedKeys(f.processed),
		Errors:            append([]string{}, f.errors...),
		Pages:             f.pages.Count(),
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
