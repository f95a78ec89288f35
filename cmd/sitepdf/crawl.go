package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/sitepdf"
	"github.com/fwojciec/sitepdf/crawl"
	"github.com/fwojciec/sitepdf/fs"
	"github.com/fwojciec/sitepdf/markdown"
	"github.com/fwojciec/sitepdf/publicsuffix"
	"github.com/google/uuid"
)

// exampleCount is the number of PDF URLs echoed in the summary.
const exampleCount = 10

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	ctx := deps.Ctx

	target, err := sitepdf.NewTarget(c.URL,
		sitepdf.WithConcurrency(c.Workers),
		sitepdf.WithDelay(time.Duration(c.Delay*float64(time.Second))),
		sitepdf.WithTimeout(c.Timeout),
	)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepdf.ErrorMessage(err))
		return err
	}

	filter, err := sitepdf.NewURLFilter(c.Include, c.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepdf.ErrorMessage(err))
		return err
	}

	var scope sitepdf.Scope
	if c.IncludeSubdomains {
		scope = publicsuffix.NewScope(target.Domain)
	}

	var formatter sitepdf.ReportFormatter
	if c.Format == "markdown" {
		formatter = markdown.NewFormatter()
	}
	writer := fs.NewReportWriter(formatter)

	runID := uuid.NewString()
	startedAt := deps.now()

	crawler := &crawl.Crawler{
		Discoverer: deps.Discoverer,
		Fetcher:    deps.Fetcher,
		Parser:     deps.Parser,
		Scope:      scope,
		Filter:     filter,
		Logger:     deps.Logger,
	}
	if deps.Status != nil {
		crawler.Progress = func(e crawl.ProgressEvent) {
			deps.setStatus(ctx, sitepdf.Status{
				RunID:     runID,
				BaseURL:   target.BaseURL,
				Batch:     e.Batch,
				Processed: e.Processed,
				Pending:   e.Pending,
				PDFs:      e.PDFs,
				Errors:    e.Errors,
				UpdatedAt: deps.now(),
			})
		}
	}

	report, crawlErr := crawler.Crawl(ctx, target)
	if report == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepdf.ErrorMessage(crawlErr))
		return crawlErr
	}

	if err := writer.WriteReport(c.Output, report); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepdf.ErrorMessage(err))
		return fmt.Errorf("write report: %w", err)
	}

	printSummary(deps.Stdout, report, c.Output)

	// Downstream sinks use a fresh context so an interrupted crawl still
	// publishes and archives what it found.
	sinkCtx := context.WithoutCancel(ctx)

	if deps.Publisher != nil && len(report.PDFURLs) > 0 {
		if err := deps.Publisher.PublishPDFs(sinkCtx, runID, report); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: %s\n", sitepdf.ErrorMessage(err))
		}
	}

	if deps.Runs != nil {
		run := &sitepdf.Run{
			ID:         runID,
			BaseURL:    target.BaseURL,
			StartedAt:  startedAt,
			FinishedAt: deps.now(),
			Report:     report,
		}
		if err := deps.Runs.CreateRun(sinkCtx, run); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: failed to archive run: %s\n", sitepdf.ErrorMessage(err))
		}
	}

	if deps.Status != nil {
		deps.setStatus(sinkCtx, sitepdf.Status{
			RunID:     runID,
			BaseURL:   target.BaseURL,
			Processed: len(report.ProcessedSitemaps),
			PDFs:      len(report.PDFURLs),
			Errors:    len(report.Errors),
			Done:      true,
			UpdatedAt: deps.now(),
		})
	}

	if crawlErr != nil {
		fmt.Fprintln(deps.Stderr, "Crawl interrupted; results are partial.")
		return crawlErr
	}
	return nil
}

func (d *Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// setStatus publishes status, logging failures instead of failing the crawl.
func (d *Dependencies) setStatus(ctx context.Context, status sitepdf.Status) {
	if err := d.Status.SetStatus(ctx, status); err != nil && d.Logger != nil {
		d.Logger.Warn("status update failed", "run", status.RunID, "err", err)
	}
}

// printSummary writes the human-readable crawl summary.
func printSummary(w io.Writer, r *sitepdf.Report, output string) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "CRAWLING COMPLETE")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Base URL: %s\n", r.BaseURL)
	fmt.Fprintf(w, "PDFs found: %d\n", len(r.PDFURLs))
	fmt.Fprintf(w, "Sitemaps processed: %d\n", len(r.ProcessedSitemaps))
	if r.Pages > 0 {
		fmt.Fprintf(w, "Pages seen (approx.): %d\n", r.Pages)
	}
	fmt.Fprintf(w, "Errors: %d\n", len(r.Errors))

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors encountered:")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}

	fmt.Fprintf(w, "\nPDF URLs saved to: %s\n", output)

	if len(r.PDFURLs) > 0 {
		fmt.Fprintf(w, "\nFirst %d PDF URLs found:\n", exampleCount)
		for i, u := range r.Examples(exampleCount) {
			fmt.Fprintf(w, "  %2d. %s\n", i+1, u)
		}
		if more := len(r.PDFURLs) - exampleCount; more > 0 {
			fmt.Fprintf(w, "  ... and %d more\n", more)
		}
	}
}
