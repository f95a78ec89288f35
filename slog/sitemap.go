package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitepdf"
)

// Ensure LoggingDiscoverer implements sitepdf.SitemapDiscoverer.
var _ sitepdf.SitemapDiscoverer = (*LoggingDiscoverer)(nil)

// LoggingDiscoverer wraps a SitemapDiscoverer with logging.
type LoggingDiscoverer struct {
	next   sitepdf.SitemapDiscoverer
	logger *slog.Logger
}

// NewLoggingDiscoverer creates a new LoggingDiscoverer.
func NewLoggingDiscoverer(next sitepdf.SitemapDiscoverer, logger *slog.Logger) *LoggingDiscoverer {
	return &LoggingDiscoverer{next: next, logger: logger}
}

// Discover delegates to the wrapped discoverer and logs the operation.
func (d *LoggingDiscoverer) Discover(ctx context.Context, target sitepdf.Target) (urls []string, err error) {
	defer func(begin time.Time) {
		d.logger.Info("sitemap discovery",
			"url", target.BaseURL,
			"count", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Discover(ctx, target)
}

// Ensure LoggingParser implements sitepdf.SitemapParser.
var _ sitepdf.SitemapParser = (*LoggingParser)(nil)

// LoggingParser wraps a SitemapParser with debug logging.
type LoggingParser struct {
	next   sitepdf.SitemapParser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next sitepdf.SitemapParser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs what was extracted.
func (p *LoggingParser) Parse(data []byte, scope sitepdf.Scope) (doc *sitepdf.SitemapDocument, err error) {
	defer func(begin time.Time) {
		attrs := []any{"bytes", len(data), "duration", time.Since(begin), "err", err}
		if doc != nil {
			attrs = append(attrs, "sitemaps", len(doc.Sitemaps), "pages", len(doc.Pages), "pdfs", len(doc.PDFs))
		}
		p.logger.Debug("parse", attrs...)
	}(time.Now())
	return p.next.Parse(data, scope)
}
