// Package http provides an HTTP implementation of sitepdf.SitemapFetcher.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/sitepdf"
)

const (
	// DefaultFetchTimeout bounds a sitemap GET.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultProbeTimeout bounds a HEAD probe during discovery.
	DefaultProbeTimeout = 10 * time.Second

	// DefaultUserAgent identifies the crawler to site operators.
	DefaultUserAgent = "Mozilla/5.0 (compatible; SitemapCrawler/1.0)"

	// DefaultMaxBodySize matches the sitemap protocol's 50MiB limit.
	DefaultMaxBodySize = 50 << 20
)

// Ensure Fetcher implements sitepdf.SitemapFetcher at compile time.
var _ sitepdf.SitemapFetcher = (*Fetcher)(nil)

// Fetcher retrieves sitemap bodies with plain HTTP requests.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	probeTimeout time.Duration
	userAgent    string
	maxBodySize  int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for GET requests.
// Defaults to DefaultFetchTimeout (15s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithProbeTimeout sets the timeout for HEAD probes.
func WithProbeTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.probeTimeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize caps the number of bytes read from a response.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithClient uses client for requests instead of a fresh http.Client.
// Timeouts are still applied per request.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		probeTimeout: DefaultProbeTimeout,
		userAgent:    DefaultUserAgent,
		maxBodySize:  DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}

	return f
}

// Fetch retrieves the body of url. Any outcome other than HTTP 200 with a
// readable body is returned as a *sitepdf.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := f.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/xml,text/xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &sitepdf.FetchError{Kind: sitepdf.FetchHTTPStatus, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, classify(url, err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &sitepdf.FetchError{
			Kind: sitepdf.FetchConnectionFailed,
			URL:  url,
			Err:  fmt.Errorf("body exceeds %d bytes", f.maxBodySize),
		}
	}

	return body, nil
}

// Probe reports whether a HEAD request to url answers 200.
// Non-200 responses are not errors.
func (f *Fetcher) Probe(ctx context.Context, url string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, f.probeTimeout)
	defer cancel()

	req, err := f.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return false, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return false, classify(url, err)
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

func (f *Fetcher) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, &sitepdf.FetchError{Kind: sitepdf.FetchConnectionFailed, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	return req, nil
}

// classify maps transport errors onto FetchError kinds.
func classify(url string, err error) *sitepdf.FetchError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &sitepdf.FetchError{Kind: sitepdf.FetchTimeout, URL: url, Err: err}
	}
	return &sitepdf.FetchError{Kind: sitepdf.FetchConnectionFailed, URL: url, Err: err}
}
