package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitepdf"
)

// Ensure LoggingPublisher implements sitepdf.PDFPublisher.
var _ sitepdf.PDFPublisher = (*LoggingPublisher)(nil)

// LoggingPublisher wraps a PDFPublisher with logging.
type LoggingPublisher struct {
	next   sitepdf.PDFPublisher
	logger *slog.Logger
}

// NewLoggingPublisher creates a new LoggingPublisher.
func NewLoggingPublisher(next sitepdf.PDFPublisher, logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{next: next, logger: logger}
}

// PublishPDFs delegates to the wrapped publisher and logs the operation.
func (p *LoggingPublisher) PublishPDFs(ctx context.Context, runID string, r *sitepdf.Report) (err error) {
	defer func(begin time.Time) {
		p.logger.Info("publish pdfs",
			"run", runID,
			"count", len(r.PDFURLs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.PublishPDFs(ctx, runID, r)
}
