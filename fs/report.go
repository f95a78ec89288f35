// Package fs writes crawl reports to the local filesystem.
package fs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/sitepdf"
)

// Ensure TextFormatter implements sitepdf.ReportFormatter at compile time.
var _ sitepdf.ReportFormatter = TextFormatter{}

// TextFormatter renders a report as a commented header followed by one
// PDF URL per line.
type TextFormatter struct{}

// Format writes r to w:
//
//	# PDF URLs found on {base}
//	# Total PDFs: {n}
//	# Sitemaps processed: {m}
//
//	{sorted PDF URLs}
func (TextFormatter) Format(w io.Writer, r *sitepdf.Report) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# PDF URLs found on %s\n", r.BaseURL)
	fmt.Fprintf(bw, "# Total PDFs: %d\n", len(r.PDFURLs))
	fmt.Fprintf(bw, "# Sitemaps processed: %d\n", len(r.ProcessedSitemaps))
	bw.WriteString("\n")
	for _, u := range r.PDFURLs {
		bw.WriteString(u)
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// Ensure ReportWriter implements sitepdf.ReportWriter at compile time.
var _ sitepdf.ReportWriter = (*ReportWriter)(nil)

// ReportWriter saves formatted reports with atomic replace semantics.
// The report is written to a temporary file next to the destination and
// renamed into place, so readers never observe a partial file.
type ReportWriter struct {
	formatter sitepdf.ReportFormatter
}

// NewReportWriter creates a ReportWriter. A nil formatter selects TextFormatter.
func NewReportWriter(formatter sitepdf.ReportFormatter) *ReportWriter {
	if formatter == nil {
		formatter = TextFormatter{}
	}
	return &ReportWriter{formatter: formatter}
}

// WriteReport formats r into path, creating parent directories as needed.
func (w *ReportWriter) WriteReport(path string, r *sitepdf.Report) (err error) {
	if r == nil {
		return sitepdf.Errorf(sitepdf.EINVALID, "report required")
	}
	if path == "" {
		return sitepdf.Errorf(sitepdf.EINVALID, "output path required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := w.formatter.Format(tmp, r); err != nil {
		return fmt.Errorf("format report: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
