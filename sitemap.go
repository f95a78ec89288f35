package sitepdf

import (
	"context"
	"regexp"
)

// SitemapDocument is the result of parsing one sitemap body.
// Each slice is deduplicated and keeps document order.
type SitemapDocument struct {
	// Sitemaps lists child sitemaps from a sitemap index.
	Sitemaps []string
	// Pages lists every in-scope page URL, PDFs included.
	Pages []string
	// PDFs lists the subset of Pages that point at PDF files.
	PDFs []string
}

// Empty reports whether the document holds no URLs at all.
func (d *SitemapDocument) Empty() bool {
	return d == nil || (len(d.Sitemaps) == 0 && len(d.Pages) == 0)
}

var pdfPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.pdf$`),
	regexp.MustCompile(`(?i)\.pdf\?`),
}

// IsPDF reports whether rawURL looks like a PDF resource: the URL ends in
// ".pdf" or has ".pdf" immediately before a query string.
func IsPDF(rawURL string) bool {
	for _, re := range pdfPatterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// SitemapFetcher retrieves sitemap documents over the network.
type SitemapFetcher interface {
	// Fetch returns the body of a 200 response.
	// Failures are reported as *FetchError.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// Probe reports whether a HEAD request to url answers 200.
	Probe(ctx context.Context, url string) (bool, error)
}

// SitemapParser classifies a sitemap body and extracts its URLs.
type SitemapParser interface {
	// Parse extracts child sitemaps, pages and PDFs that fall inside scope.
	// A body that is neither XML nor a text URL list yields an empty
	// document and a *ParseError.
	Parse(data []byte, scope Scope) (*SitemapDocument, error)
}

// SitemapDiscoverer finds the initial sitemap URLs for a target.
type SitemapDiscoverer interface {
	// Discover returns the deduplicated seed sitemaps. An empty result is
	// not an error.
	Discover(ctx context.Context, target Target) ([]string, error)
}

// URLFilter specifies patterns for including/excluding PDF URLs.
type URLFilter struct {
	// Include patterns - if set, only URLs matching at least one pattern are included.
	Include []*regexp.Regexp

	// Exclude patterns - URLs matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// NewURLFilter compiles include and exclude expressions.
// Returns nil when both lists are empty.
func NewURLFilter(include, exclude []string) (*URLFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}
	f := &URLFilter{}
	for _, pattern := range include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid include pattern %q: %v", pattern, err)
		}
		f.Include = append(f.Include, re)
	}
	for _, pattern := range exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid exclude pattern %q: %v", pattern, err)
		}
		f.Exclude = append(f.Exclude, re)
	}
	return f, nil
}

// Match returns true if the URL passes the filter.
// If the filter is nil, all URLs pass.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	if len(f.Include) > 0 {
		matched := false
		for _, re := range f.Include {
			if re.MatchString(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range f.Exclude {
		if re.MatchString(url) {
			return false
		}
	}

	return true
}
