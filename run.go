package sitepdf

import (
	"context"
	"time"
)

// Run is an archived crawl.
type Run struct {
	ID         string    `json:"id"`
	BaseURL    string    `json:"baseUrl"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	// Counts are always populated; Report is only loaded by FindRunByID.
	PDFCount     int     `json:"pdfCount"`
	SitemapCount int     `json:"sitemapCount"`
	ErrorCount   int     `json:"errorCount"`
	PageCount    int     `json:"pageCount"`
	Report       *Report `json:"report,omitempty"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.BaseURL == "" {
		return Errorf(EINVALID, "run base URL required")
	}
	if r.Report == nil {
		return Errorf(EINVALID, "run report required")
	}
	return nil
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	BaseURL *string `json:"baseUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RunService archives finished crawls.
type RunService interface {
	// CreateRun stores a run. ID is assigned if empty.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run including its report.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns lists runs, newest first, without reports.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}

// Status is the live progress of a crawl.
type Status struct {
	RunID     string    `json:"runId"`
	BaseURL   string    `json:"baseUrl"`
	Batch     int       `json:"batch"`
	Processed int       `json:"processed"`
	Pending   int       `json:"pending"`
	PDFs      int       `json:"pdfs"`
	Errors    int       `json:"errors"`
	Done      bool      `json:"done"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusStore publishes live crawl status.
type StatusStore interface {
	SetStatus(ctx context.Context, status Status) error
	GetStatus(ctx context.Context, runID string) (Status, bool, error)
}
