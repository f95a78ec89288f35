package sitepdf

import (
	"context"
	"io"
)

// Report is the frozen outcome of a crawl.
type Report struct {
	BaseURL string `json:"baseUrl"`

	// PDFURLs is sorted lexicographically.
	PDFURLs []string `json:"pdfUrls"`

	// ProcessedSitemaps is sorted lexicographically and includes sitemaps
	// whose fetch failed.
	ProcessedSitemaps []string `json:"processedSitemaps"`

	// Errors holds one message per failed sitemap, in the order recorded.
	Errors []string `json:"errors"`

	// Pages is the approximate number of distinct page URLs seen.
	Pages uint `json:"pages"`
}

// EmptyReport returns the report of a crawl that found no sitemaps.
func EmptyReport(baseURL string) *Report {
	return &Report{
		BaseURL:           baseURL,
		PDFURLs:           []string{},
		ProcessedSitemaps: []string{},
		Errors:            []string{ErrNoSitemaps.Error()},
	}
}

// Examples returns at most n PDF URLs from the front of the sorted list.
func (r *Report) Examples(n int) []string {
	if n > len(r.PDFURLs) {
		n = len(r.PDFURLs)
	}
	return r.PDFURLs[:n]
}

// ReportFormatter renders a report.
type ReportFormatter interface {
	Format(w io.Writer, r *Report) error
}

// ReportWriter persists a report to a path.
type ReportWriter interface {
	WriteReport(path string, r *Report) error
}

// PDFPublisher hands discovered PDF URLs to downstream consumers
// such as a downloader.
type PDFPublisher interface {
	PublishPDFs(ctx context.Context, runID string, r *Report) error
}
