// Package crawl walks a site's sitemap tree and collects the PDF URLs it
// lists. It coordinates seed discovery, the frontier of pending sitemaps
// and level-by-level batches of concurrent fetches.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitepdf"
	"github.com/fwojciec/sitepdf/bloom"
	"golang.org/x/sync/errgroup"
)

// Crawler expands sitemaps breadth first, one batch per tree level.
type Crawler struct {
	Discoverer sitepdf.SitemapDiscoverer
	Fetcher    sitepdf.SitemapFetcher
	Parser     sitepdf.SitemapParser

	// Scope overrides the target's same-domain scope when set.
	Scope sitepdf.Scope
	// Filter, when set, drops PDF URLs before they are recorded.
	Filter *sitepdf.URLFilter

	Logger   *slog.Logger
	Progress ProgressFunc

	// Sleep waits out the politeness delay. Defaults to a timer that
	// aborts on context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ProgressEvent reports the frontier state after a batch finishes.
type ProgressEvent struct {
	Batch     int
	Size      int
	Processed int
	Pending   int
	PDFs      int
	Errors    int
}

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl discovers seed sitemaps for target and processes the sitemap tree
// until no unprocessed sitemap remains.
//
// Per-sitemap failures never abort the crawl; they are recorded in the
// report's error list. If ctx is canceled, no new batch is started, the
// running batch drains, and the partial report is returned with ctx.Err().
func (c *Crawler) Crawl(ctx context.Context, target sitepdf.Target) (*sitepdf.Report, error) {
	logger := c.logger()
	frontier := NewFrontier(bloom.DefaultCapacity, bloom.DefaultFPRate)

	seeds, err := c.Discoverer.Discover(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return frontier.Snapshot(target.BaseURL), ctx.Err()
		}
		return nil, fmt.Errorf("sitemap discovery: %w", err)
	}
	if len(seeds) == 0 {
		logger.Warn("no sitemaps found", "url", target.BaseURL)
		return sitepdf.EmptyReport(target.BaseURL), nil
	}

	scope := c.Scope
	if scope == nil {
		scope = target.Scope()
	}
	concurrency := target.Concurrency
	if concurrency <= 0 {
		concurrency = sitepdf.DefaultConcurrency
	}

	frontier.MarkPending(seeds)
	logger.Info("starting crawl", "url", target.BaseURL, "seeds", len(seeds), "workers", concurrency)

	for batch := 1; ; batch++ {
		if ctx.Err() != nil {
			break
		}
		urls := frontier.TakeBatch()
		if len(urls) == 0 {
			break
		}
		logger.Info("processing batch", "batch", batch, "size", len(urls))

		var g errgroup.Group
		g.SetLimit(concurrency)
		for _, u := range urls {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				c.process(ctx, frontier, scope, target, u)
				return nil
			})
		}
		_ = g.Wait()

		processed, pending, pdfs, errs := frontier.Counts()
		logger.Info("batch complete",
			"batch", batch,
			"processed", processed,
			"pending", pending,
			"pdfs", pdfs,
			"errors", errs,
		)
		if c.Progress != nil {
			c.Progress(ProgressEvent{
				Batch:     batch,
				Size:      len(urls),
				Processed: processed,
				Pending:   pending,
				PDFs:      pdfs,
				Errors:    errs,
			})
		}
	}

	report := frontier.Snapshot(target.BaseURL)
	if err := ctx.Err(); err != nil {
		logger.Warn("crawl interrupted", "url", target.BaseURL, "processed", len(report.ProcessedSitemaps))
		return report, err
	}
	logger.Info("crawl complete",
		"url", target.BaseURL,
		"pdfs", len(report.PDFURLs),
		"sitemaps", len(report.ProcessedSitemaps),
		"errors", len(report.Errors),
	)
	return report, nil
}

// process handles a single sitemap. Every outcome except cancellation
// ends with url marked processed.
func (c *Crawler) process(ctx context.Context, frontier *Frontier, scope sitepdf.Scope, target sitepdf.Target, url string) {
	logger := c.logger()

	defer func() {
		if r := recover(); r != nil {
			werr := &sitepdf.WorkerError{URL: url, Value: r}
			logger.Error("sitemap worker failed", "url", url, "err", werr)
			frontier.RecordError(fmt.Sprintf("Error processing %s: %v", url, r))
			frontier.MarkProcessed(url)
		}
	}()

	if err := c.sleep(ctx, target.Delay); err != nil {
		return
	}

	body, err := c.fetch(ctx, target.Timeout, url)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Warn("sitemap request failed", "url", url, "err", err)
		frontier.RecordError(fmt.Sprintf("Request error for %s: %v", url, err))
		frontier.MarkProcessed(url)
		return
	}

	doc, err := c.Parser.Parse(body, scope)
	if err != nil {
		logger.Warn("sitemap parse failed", "url", url, "err", err)
		frontier.RecordError(fmt.Sprintf("Parse error for %s: %v", url, err))
	} else if !frontier.ClaimDigest(xxhash.Sum64(body)) {
		// Only parsed bodies are claimed, so every copy of a malformed
		// body still records its own error.
		logger.Debug("duplicate sitemap content", "url", url)
		frontier.MarkProcessed(url)
		return
	}

	doc = c.filter(doc)
	queued := frontier.Complete(url, doc)
	if doc != nil {
		logger.Debug("processed sitemap",
			"url", url,
			"sitemaps", len(doc.Sitemaps),
			"pages", len(doc.Pages),
			"pdfs", len(doc.PDFs),
			"queued", queued,
		)
	}
}

// filter applies the PDF include/exclude patterns to doc.
func (c *Crawler) filter(doc *sitepdf.SitemapDocument) *sitepdf.SitemapDocument {
	if doc == nil || c.Filter == nil {
		return doc
	}
	filtered := &sitepdf.SitemapDocument{
		Sitemaps: doc.Sitemaps,
		Pages:    doc.Pages,
	}
	for _, u := range doc.PDFs {
		if c.Filter.Match(u) {
			filtered.PDFs = append(filtered.PDFs, u)
		}
	}
	return filtered
}

// fetch bounds a single request by timeout, leaving ctx untouched.
func (c *Crawler) fetch(ctx context.Context, timeout time.Duration, url string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return c.Fetcher.Fetch(ctx, url)
}

func (c *Crawler) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
