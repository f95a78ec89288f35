package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/sitepdf"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sitepdf.RunService = (*RunService)(nil)

// RunService implements sitepdf.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun stores run and its report in a single transaction.
// Counts are derived from the report.
func (s *RunService) CreateRun(ctx context.Context, run *sitepdf.Run) (err error) {
	if err := run.Validate(); err != nil {
		return err
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}
	run.PDFCount = len(run.Report.PDFURLs)
	run.SitemapCount = len(run.Report.ProcessedSitemaps)
	run.ErrorCount = len(run.Report.Errors)
	run.PageCount = int(run.Report.Pages)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, base_url, started_at, finished_at, pdf_count, sitemap_count, error_count, page_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.BaseURL,
		run.StartedAt.UTC().Format(timeFormat), run.FinishedAt.UTC().Format(timeFormat),
		run.PDFCount, run.SitemapCount, run.ErrorCount, run.PageCount)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err = insertStrings(ctx, tx, "run_pdfs", run.ID, run.Report.PDFURLs); err != nil {
		return err
	}
	if err = insertStrings(ctx, tx, "run_sitemaps", run.ID, run.Report.ProcessedSitemaps); err != nil {
		return err
	}
	for i, msg := range run.Report.Errors {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO run_errors (run_id, position, message) VALUES (?, ?, ?)",
			run.ID, i, msg,
		); err != nil {
			return fmt.Errorf("insert run error: %w", err)
		}
	}

	return tx.Commit()
}

// FindRunByID retrieves a run and rebuilds its report.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*sitepdf.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `
		SELECT id, base_url, started_at, finished_at, pdf_count, sitemap_count, error_count, page_count
		FROM runs
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sitepdf.Errorf(sitepdf.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	report := &sitepdf.Report{BaseURL: run.BaseURL, Pages: uint(run.PageCount)}
	if report.PDFURLs, err = queryStrings(ctx, s.db,
		"SELECT url FROM run_pdfs WHERE run_id = ? ORDER BY url", id); err != nil {
		return nil, err
	}
	if report.ProcessedSitemaps, err = queryStrings(ctx, s.db,
		"SELECT url FROM run_sitemaps WHERE run_id = ? ORDER BY url", id); err != nil {
		return nil, err
	}
	if report.Errors, err = queryStrings(ctx, s.db,
		"SELECT message FROM run_errors WHERE run_id = ? ORDER BY position", id); err != nil {
		return nil, err
	}
	run.Report = report

	return run, nil
}

// FindRuns lists runs newest first without loading their reports.
func (s *RunService) FindRuns(ctx context.Context, filter sitepdf.RunFilter) ([]*sitepdf.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, base_url, started_at, finished_at, pdf_count, sitemap_count, error_count, page_count
		FROM runs WHERE 1=1`)

	if filter.BaseURL != nil {
		query.WriteString(" AND base_url = ?")
		args = append(args, *filter.BaseURL)
	}

	query.WriteString(" ORDER BY started_at DESC, id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*sitepdf.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*sitepdf.Run, error) {
	var run sitepdf.Run
	var startedAt, finishedAt string

	if err := row.Scan(&run.ID, &run.BaseURL, &startedAt, &finishedAt,
		&run.PDFCount, &run.SitemapCount, &run.ErrorCount, &run.PageCount); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
		return nil, err
	}
	return &run, nil
}
