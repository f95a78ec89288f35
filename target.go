package sitepdf

import (
	"net/url"
	"strings"
	"time"
)

// Crawl defaults.
const (
	DefaultConcurrency = 5
	DefaultDelay       = 1 * time.Second
	DefaultTimeout     = 15 * time.Second
)

// Target describes a single crawl. It is created once by NewTarget and
// passed by value; nothing mutates it after construction.
type Target struct {
	// BaseURL is the homepage URL with trailing slashes removed.
	BaseURL string
	// Domain is the host (including any port) of BaseURL.
	Domain string

	Concurrency int
	// Delay is slept before every sitemap request.
	Delay time.Duration
	// Timeout bounds each sitemap request made by the crawler.
	Timeout time.Duration
}

// TargetOption configures a Target.
type TargetOption func(*Target)

// WithConcurrency sets the maximum number of concurrent sitemap fetches.
func WithConcurrency(n int) TargetOption {
	return func(t *Target) {
		t.Concurrency = n
	}
}

// WithDelay sets the politeness delay applied before every sitemap request.
func WithDelay(d time.Duration) TargetOption {
	return func(t *Target) {
		t.Delay = d
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) TargetOption {
	return func(t *Target) {
		t.Timeout = d
	}
}

// NewTarget validates rawURL and returns a normalized Target.
// Returns EINVALID if the URL or any option is unusable.
func NewTarget(rawURL string, opts ...TargetOption) (Target, error) {
	base := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if base == "" {
		return Target{}, Errorf(EINVALID, "base URL required")
	}

	u, err := url.Parse(base)
	if err != nil {
		return Target{}, Errorf(EINVALID, "invalid base URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Target{}, Errorf(EINVALID, "base URL %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return Target{}, Errorf(EINVALID, "base URL %q has no host", rawURL)
	}

	t := Target{
		BaseURL:     base,
		Domain:      u.Host,
		Concurrency: DefaultConcurrency,
		Delay:       DefaultDelay,
		Timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&t)
	}

	if t.Concurrency <= 0 {
		return Target{}, Errorf(EINVALID, "concurrency must be positive, got %d", t.Concurrency)
	}
	if t.Delay < 0 {
		return Target{}, Errorf(EINVALID, "delay must be non-negative, got %s", t.Delay)
	}
	if t.Timeout <= 0 {
		return Target{}, Errorf(EINVALID, "timeout must be positive, got %s", t.Timeout)
	}

	return t, nil
}

// Resolve returns the absolute URL for path on the target's host.
// Like a browser resolving "/robots.txt", any path on BaseURL is dropped.
func (t Target) Resolve(path string) string {
	base, err := url.Parse(t.BaseURL)
	if err != nil {
		return t.BaseURL + path
	}
	return base.ResolveReference(&url.URL{Path: path}).String()
}

// Scope returns the default same-domain scope for the target.
func (t Target) Scope() Scope {
	return HostScope{Domain: t.Domain}
}

// Scope decides whether a URL found in a sitemap belongs to the crawl.
type Scope interface {
	Contains(rawURL string) bool
}

// HostScope accepts URLs whose host equals Domain, "www." + Domain, or
// Domain with a leading "www." removed. Other subdomains are out of scope.
type HostScope struct {
	Domain string
}

// Contains reports whether rawURL is on the scope's domain.
func (s HostScope) Contains(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	return MatchHost(u.Host, s.Domain)
}

// MatchHost applies the www-tolerant host comparison used by HostScope.
// Hosts compare case-insensitively.
func MatchHost(host, domain string) bool {
	host = strings.ToLower(host)
	domain = strings.ToLower(domain)
	if domain == "" {
		return false
	}
	return host == domain ||
		host == "www."+domain ||
		host == strings.TrimPrefix(domain, "www.")
}
