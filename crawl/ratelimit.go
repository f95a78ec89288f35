package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/sitepdf"
	"golang.org/x/time/rate"
)

var _ sitepdf.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces requests to each host with its own token bucket.
// Host keys are case-insensitive. Requests to different hosts never wait
// on each other.
type DomainLimiter struct {
	rate rate.Limit

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewDomainLimiter returns a limiter allowing rps requests per second per
// host, without bursting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		rate:  rate.Limit(rps),
		hosts: map[string]*rate.Limiter{},
	}
}

// Wait blocks until domain may be requested again or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.bucket(domain).Wait(ctx)
}

func (d *DomainLimiter) bucket(domain string) *rate.Limiter {
	key := strings.ToLower(domain)
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.hosts[key]
	if !ok {
		b = rate.NewLimiter(d.rate, 1)
		d.hosts[key] = b
	}
	return b
}

var _ sitepdf.SitemapFetcher = (*LimitedFetcher)(nil)

// LimitedFetcher waits on a DomainLimiter before every request.
type LimitedFetcher struct {
	next    sitepdf.SitemapFetcher
	limiter sitepdf.DomainLimiter
}

// NewLimitedFetcher wraps next with limiter.
func NewLimitedFetcher(next sitepdf.SitemapFetcher, limiter sitepdf.DomainLimiter) *LimitedFetcher {
	return &LimitedFetcher{next: next, limiter: limiter}
}

// Fetch waits for the URL's host to be allowed, then fetches.
func (f *LimitedFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.wait(ctx, rawURL); err != nil {
		return nil, err
	}
	return f.next.Fetch(ctx, rawURL)
}

// Probe waits for the URL's host to be allowed, then probes.
func (f *LimitedFetcher) Probe(ctx context.Context, rawURL string) (bool, error) {
	if err := f.wait(ctx, rawURL); err != nil {
		return false, err
	}
	return f.next.Probe(ctx, rawURL)
}

func (f *LimitedFetcher) wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &sitepdf.FetchError{Kind: sitepdf.FetchConnectionFailed, URL: rawURL, Err: err}
	}
	return f.limiter.Wait(ctx, u.Host)
}
