// Package slog provides logging decorators for sitepdf services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitepdf"
)

// Ensure LoggingFetcher implements sitepdf.SitemapFetcher.
var _ sitepdf.SitemapFetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a SitemapFetcher with logging.
type LoggingFetcher struct {
	next   sitepdf.SitemapFetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next sitepdf.SitemapFetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (body []byte, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(body),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Probe delegates to the wrapped fetcher and logs the outcome at debug level.
func (f *LoggingFetcher) Probe(ctx context.Context, url string) (ok bool, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("probe",
			"url", url,
			"ok", ok,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Probe(ctx, url)
}
