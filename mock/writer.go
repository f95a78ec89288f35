package mock

import (
	"context"
	"io"

	"github.com/fwojciec/sitepdf"
)

var _ sitepdf.ReportWriter = (*ReportWriter)(nil)

// ReportWriter is a mock implementation of sitepdf.ReportWriter.
type ReportWriter struct {
	WriteReportFn func(path string, r *sitepdf.Report) error
}

func (w *ReportWriter) WriteReport(path string, r *sitepdf.Report) error {
	return w.WriteReportFn(path, r)
}

var _ sitepdf.ReportFormatter = (*ReportFormatter)(nil)

// ReportFormatter is a mock implementation of sitepdf.ReportFormatter.
type ReportFormatter struct {
	FormatFn func(w io.Writer, r *sitepdf.Report) error
}

func (f *ReportFormatter) Format(w io.Writer, r *sitepdf.Report) error {
	return f.FormatFn(w, r)
}

var _ sitepdf.PDFPublisher = (*PDFPublisher)(nil)

// PDFPublisher is a mock implementation of sitepdf.PDFPublisher.
type PDFPublisher struct {
	PublishPDFsFn func(ctx context.Context, runID string, r *sitepdf.Report) error
}

func (p *PDFPublisher) PublishPDFs(ctx context.Context, runID string, r *sitepdf.Report) error {
	return p.PublishPDFsFn(ctx, runID, r)
}
