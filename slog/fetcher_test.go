package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/sitepdf/mock"
	siteslog "github.com/fwojciec/sitepdf/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SitemapFetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				return []byte("<urlset></urlset>"), nil
			},
		}

		fetcher := siteslog.NewLoggingFetcher(inner, logger)
		body, err := fetcher.Fetch(context.Background(), "https://university.edu/sitemap.xml")

		require.NoError(t, err)
		assert.Equal(t, "<urlset></urlset>", string(body))
		output := buf.String()
		assert.Contains(t, output, "fetch")
		assert.Contains(t, output, "url=https://university.edu/sitemap.xml")
		assert.Contains(t, output, "bytes=17")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SitemapFetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				return nil, errors.New("network error")
			},
		}

		fetcher := siteslog.NewLoggingFetcher(inner, logger)
		_, err := fetcher.Fetch(context.Background(), "https://university.edu/sitemap.xml")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "fetch")
		assert.Contains(t, output, "err=\"network error\"")
	})
}

func TestLoggingFetcher_Probe(t *testing.T) {
	t.Parallel()

	t.Run("logs probe at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.SitemapFetcher{
			ProbeFn: func(ctx context.Context, url string) (bool, error) {
				return true, nil
			},
		}

		fetcher := siteslog.NewLoggingFetcher(inner, logger)
		ok, err := fetcher.Probe(context.Background(), "https://university.edu/sitemap.xml")

		require.NoError(t, err)
		assert.True(t, ok)
		output := buf.String()
		assert.Contains(t, output, "level=DEBUG")
		assert.Contains(t, output, "msg=probe")
		assert.Contains(t, output, "ok=true")
	})

	t.Run("is silent at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SitemapFetcher{
			ProbeFn: func(ctx context.Context, url string) (bool, error) {
				return false, nil
			},
		}

		_, err := siteslog.NewLoggingFetcher(inner, logger).Probe(context.Background(), "https://university.edu/x")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}
