package mock

import (
	"context"

	"github.com/fwojciec/sitepdf"
)

var _ sitepdf.SitemapParser = (*SitemapParser)(nil)

// SitemapParser is a mock implementation of sitepdf.SitemapParser.
type SitemapParser struct {
	ParseFn func(data []byte, scope sitepdf.Scope) (*sitepdf.SitemapDocument, error)
}

func (p *SitemapParser) Parse(data []byte, scope sitepdf.Scope) (*sitepdf.SitemapDocument, error) {
	return p.ParseFn(data, scope)
}

var _ sitepdf.SitemapDiscoverer = (*SitemapDiscoverer)(nil)

// SitemapDiscoverer is a mock implementation of sitepdf.SitemapDiscoverer.
type SitemapDiscoverer struct {
	DiscoverFn func(ctx context.Context, target sitepdf.Target) ([]string, error)
}

func (d *SitemapDiscoverer) Discover(ctx context.Context, target sitepdf.Target) ([]string, error) {
	return d.DiscoverFn(ctx, target)
}
