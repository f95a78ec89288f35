package crawl

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/fwojciec/sitepdf"
	"github.com/temoto/robotstxt"
)

var _ sitepdf.SitemapDiscoverer = (*Bootstrapper)(nil)

// ConventionalSitemapPaths are probed with HEAD on every target.
var ConventionalSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemaps.xml",
	"/sitemap/",
	"/wp-sitemap.xml",
	"/sitemap-index.xml",
}

// Bootstrapper finds seed sitemaps from robots.txt and conventional paths.
type Bootstrapper struct {
	Fetcher sitepdf.SitemapFetcher
	Logger  *slog.Logger
}

// NewBootstrapper creates a Bootstrapper. A nil logger discards output.
func NewBootstrapper(fetcher sitepdf.SitemapFetcher, logger *slog.Logger) *Bootstrapper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bootstrapper{Fetcher: fetcher, Logger: logger}
}

// Discover returns the robots.txt sitemaps followed by every conventional
// path that answers 200, without duplicates. Failures of individual
// requests are logged and skipped; only context cancellation is an error.
func (b *Bootstrapper) Discover(ctx context.Context, target sitepdf.Target) ([]string, error) {
	var found []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		found = append(found, u)
	}

	for _, u := range b.robotsSitemaps(ctx, target) {
		add(u)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, path := range ConventionalSitemapPaths {
		candidate := target.Resolve(path)
		ok, err := b.Fetcher.Probe(ctx, candidate)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err != nil {
			b.logger().Debug("sitemap probe failed", "url", candidate, "err", err)
			continue
		}
		if ok {
			b.logger().Info("found sitemap", "url", candidate, "source", "probe")
			add(candidate)
		}
	}

	return found, nil
}

// robotsSitemaps returns the Sitemap directives of the target's robots.txt.
func (b *Bootstrapper) robotsSitemaps(ctx context.Context, target sitepdf.Target) []string {
	robotsURL := target.Resolve("/robots.txt")
	body, err := b.Fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		b.logger().Debug("robots.txt unavailable", "url", robotsURL, "err", err)
		return nil
	}

	var candidates []string
	if robots, err := robotstxt.FromBytes(body); err == nil {
		candidates = robots.Sitemaps
	} else {
		b.logger().Debug("robots.txt has invalid rules, scanning lines", "url", robotsURL, "err", err)
		candidates = scanSitemapLines(body)
	}

	var sitemaps []string
	for _, s := range candidates {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		b.logger().Info("found sitemap", "url", s, "source", "robots.txt")
		sitemaps = append(sitemaps, s)
	}
	return sitemaps
}

func (b *Bootstrapper) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// scanSitemapLines returns the value of every line starting with
// "sitemap:", ignoring case and all other directives.
func scanSitemapLines(body []byte) []string {
	var sitemaps []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			sitemaps = append(sitemaps, line[len("sitemap:"):])
		}
	}
	return sitemaps
}
