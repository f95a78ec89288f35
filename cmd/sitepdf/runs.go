package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/sitepdf"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	if deps.Runs == nil {
		err := sitepdf.Errorf(sitepdf.EINVALID, "run archive disabled; drop --no-archive to list runs")
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepdf.ErrorMessage(err))
		return err
	}

	filter := sitepdf.RunFilter{Limit: c.Limit}
	if c.BaseURL != "" {
		filter.BaseURL = &c.BaseURL
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepdf.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'sitepdf URL' to crawl a site.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  pdfs=%d sitemaps=%d errors=%d\n",
			r.ID,
			r.StartedAt.UTC().Format(time.DateTime),
			r.BaseURL,
			r.PDFCount,
			r.SitemapCount,
			r.ErrorCount,
		)
	}

	return nil
}
