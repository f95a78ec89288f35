package mock

import (
	"context"

	"github.com/fwojciec/sitepdf"
)

var _ sitepdf.SitemapFetcher = (*SitemapFetcher)(nil)

// SitemapFetcher is a mock implementation of sitepdf.SitemapFetcher.
type SitemapFetcher struct {
	FetchFn func(ctx context.Context, url string) ([]byte, error)
	ProbeFn func(ctx context.Context, url string) (bool, error)
}

func (f *SitemapFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.FetchFn(ctx, url)
}

func (f *SitemapFetcher) Probe(ctx context.Context, url string) (bool, error) {
	return f.ProbeFn(ctx, url)
}
