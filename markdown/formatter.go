// Package markdown renders crawl reports as GitHub-flavored markdown
// using github.com/nao1215/markdown.
package markdown

import (
	"io"
	"strconv"

	"github.com/fwojciec/sitepdf"
	"github.com/nao1215/markdown"
)

var _ sitepdf.ReportFormatter = (*Formatter)(nil)

// Formatter renders a summary table, the error list, the processed
// sitemaps and the PDF URLs.
type Formatter struct{}

// NewFormatter creates a new Formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format writes r to w as markdown.
func (f *Formatter) Format(w io.Writer, r *sitepdf.Report) error {
	md := markdown.NewMarkdown(w)

	md.H1("PDF URLs found on " + r.BaseURL)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", r.BaseURL},
			{"Total PDFs", strconv.Itoa(len(r.PDFURLs))},
			{"Sitemaps processed", strconv.Itoa(len(r.ProcessedSitemaps))},
			{"Pages seen (approx.)", strconv.FormatUint(uint64(r.Pages), 10)},
			{"Errors", strconv.Itoa(len(r.Errors))},
		},
	})
	md.PlainText("")

	if len(r.Errors) > 0 {
		md.Warningf("%d sitemap(s) could not be processed.", len(r.Errors))
		md.PlainText("")
		md.H2("Errors")
		md.PlainText("")
		md.BulletList(r.Errors...)
		md.PlainText("")
	}

	md.H2("PDFs")
	md.PlainText("")
	if len(r.PDFURLs) == 0 {
		md.PlainText("No PDF URLs found.")
	} else {
		md.BulletList(r.PDFURLs...)
	}
	md.PlainText("")

	if len(r.ProcessedSitemaps) > 0 {
		md.H2("Sitemaps")
		md.PlainText("")
		md.BulletList(r.ProcessedSitemaps...)
		md.PlainText("")
	}

	return md.Build()
}
