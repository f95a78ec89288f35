package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/sitepdf"
	"github.com/fwojciec/sitepdf/crawl"
	"github.com/fwojciec/sitepdf/etree"
	"github.com/fwojciec/sitepdf/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://university.edu"

// site serves canned sitemap bodies and counts requests per URL.
type site struct {
	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
	hits   map[string]int
}

func newSite(bodies map[string]string) *site {
	return &site{bodies: bodies, status: map[string]int{}, hits: map[string]int{}}
}

func (s *site) fetcher() *mock.SitemapFetcher {
	return &mock.SitemapFetcher{
		FetchFn: func(_ context.Context, url string) ([]byte, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.hits[url]++
			if code, ok := s.status[url]; ok {
				return nil, &sitepdf.FetchError{Kind: sitepdf.FetchHTTPStatus, URL: url, StatusCode: code}
			}
			body, ok := s.bodies[url]
			if !ok {
				return nil, &sitepdf.FetchError{Kind: sitepdf.FetchHTTPStatus, URL: url, StatusCode: 404}
			}
			return []byte(body), nil
		},
	}
}

func (s *site) hitsFor(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[url]
}

func (s *site) maxHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n = max(n, h)
	}
	return n
}

func index(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, l := range locs {
		fmt.Fprintf(&b, "<sitemap><loc>%s</loc></sitemap>", l)
	}
	b.WriteString("</sitemapindex>")
	return b.String()
}

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, l := range locs {
		fmt.Fprintf(&b, "<url><loc>%s</loc></url>", l)
	}
	b.WriteString("</urlset>")
	return b.String()
}

func seeds(urls ...string) *mock.SitemapDiscoverer {
	return &mock.SitemapDiscoverer{
		DiscoverFn: func(_ context.Context, _ sitepdf.Target) ([]string, error) {
			return urls, nil
		},
	}
}

func newTarget(t *testing.T, workers int) sitepdf.Target {
	t.Helper()
	target, err := sitepdf.NewTarget(base, sitepdf.WithConcurrency(workers), sitepdf.WithDelay(0))
	require.NoError(t, err)
	return target
}

func newCrawler(s *site, discoverer sitepdf.SitemapDiscoverer) *crawl.Crawler {
	return &crawl.Crawler{
		Discoverer: discoverer,
		Fetcher:    s.fetcher(),
		Parser:     etree.NewParser(),
	}
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("empty discovery yields no sitemaps report", func(t *testing.T) {
		t.Parallel()

		s := newSite(nil)
		c := newCrawler(s, seeds())

		report, err := c.Crawl(context.Background(), newTarget(t, 5))

		require.NoError(t, err)
		assert.Equal(t, base, report.BaseURL)
		assert.Empty(t, report.PDFURLs)
		assert.Empty(t, report.ProcessedSitemaps)
		assert.Equal(t, []string{"No sitemaps found"}, report.Errors)
		assert.Equal(t, 0, s.maxHits())
	})

	t.Run("expands index and ignores back reference to root", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		a := base + "/sitemap-a.xml"
		b := base + "/sitemap-b.xml"
		s := newSite(map[string]string{
			root: index(a, b),
			a:    urlset(base+"/forms/apply.pdf", base+"/about"),
			b:    index(root),
		})
		c := newCrawler(s, seeds(root))

		report, err := c.Crawl(context.Background(), newTarget(t, 5))

		require.NoError(t, err)
		assert.Equal(t, []string{base + "/forms/apply.pdf"}, report.PDFURLs)
		assert.Equal(t, []string{a, b, root}, report.ProcessedSitemaps)
		assert.Empty(t, report.Errors)
		assert.Equal(t, 1, s.hitsFor(root))
		assert.Equal(t, uint(2), report.Pages)
	})

	t.Run("failed child is recorded and the rest succeed", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap_index.xml"
		bodies := map[string]string{}
		var children []string
		for i := range 5 {
			child := fmt.Sprintf("%s/child-%d.xml", base, i)
			children = append(children, child)
			bodies[child] = urlset(fmt.Sprintf("%s/docs/%d.pdf", base, i))
		}
		bodies[root] = index(children...)
		s := newSite(bodies)
		s.status[children[2]] = 500
		c := newCrawler(s, seeds(root))

		report, err := c.Crawl(context.Background(), newTarget(t, 5))

		require.NoError(t, err)
		assert.Len(t, report.PDFURLs, 4)
		assert.NotContains(t, report.PDFURLs, base+"/docs/2.pdf")
		assert.Len(t, report.ProcessedSitemaps, 6, "failed sitemap still counts as processed")
		require.Len(t, report.Errors, 1)
		assert.Equal(t,
			"Request error for "+children[2]+": HTTP 500 Internal Server Error for "+children[2],
			report.Errors[0],
		)
		assert.Equal(t, 1, s.hitsFor(children[2]), "failed sitemap is not retried")
	})

	t.Run("cycles and sibling references are fetched once", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		a := base + "/a.xml"
		b := base + "/b.xml"
		c := base + "/c.xml"
		d := base + "/d.xml"
		s := newSite(map[string]string{
			root: index(a, b, c),
			a:    index(b, c, root), // siblings in the same batch
			b:    index(a, c, d),    // siblings plus a new child
			c:    index(c),          // self reference
			d:    index(root, a, b, c, d),
		})
		crawler := newCrawler(s, seeds(root, root))

		report, err := crawler.Crawl(context.Background(), newTarget(t, 3))

		require.NoError(t, err)
		assert.Len(t, report.ProcessedSitemaps, 5)
		assert.Equal(t, 1, s.maxHits())
		assert.Empty(t, report.Errors)
	})

	t.Run("out of scope sitemaps and PDFs are ignored", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		www := "https://www.university.edu/w.xml"
		s := newSite(map[string]string{
			root: index("https://partner.org/sitemap.xml", www),
			www: urlset(
				"https://www.university.edu/ok.pdf",
				"https://cdn.partner.org/no.pdf",
				"https://library.university.edu/sub.pdf",
			),
		})
		c := newCrawler(s, seeds(root))

		report, err := c.Crawl(context.Background(), newTarget(t, 2))

		require.NoError(t, err)
		assert.Equal(t, []string{"https://www.university.edu/ok.pdf"}, report.PDFURLs)
		assert.Equal(t, 0, s.hitsFor("https://partner.org/sitemap.xml"))
	})

	t.Run("custom scope widens the domain", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		s := newSite(map[string]string{
			root: urlset("https://library.university.edu/sub.pdf"),
		})
		c := newCrawler(s, seeds(root))
		c.Scope = scopeFunc(func(string) bool { return true })

		report, err := c.Crawl(context.Background(), newTarget(t, 1))

		require.NoError(t, err)
		assert.Equal(t, []string{"https://library.university.edu/sub.pdf"}, report.PDFURLs)
	})

	t.Run("report is deterministic regardless of concurrency", func(t *testing.T) {
		t.Parallel()

		bodies := map[string]string{}
		var children []string
		for i := range 20 {
			child := fmt.Sprintf("%s/s%02d.xml", base, 19-i)
			children = append(children, child)
			bodies[child] = urlset(
				fmt.Sprintf("%s/z/%d.pdf", base, i),
				fmt.Sprintf("%s/a/%d.PDF?v=1", base, i),
			)
		}
		bodies[base+"/sitemap.xml"] = index(children...)

		run := func(workers int) *sitepdf.Report {
			c := newCrawler(newSite(bodies), seeds(base+"/sitemap.xml"))
			r, err := c.Crawl(context.Background(), newTarget(t, workers))
			require.NoError(t, err)
			return r
		}

		serial := run(1)
		parallel := run(8)

		assert.Equal(t, serial, parallel)
		assert.IsIncreasing(t, serial.PDFURLs)
		assert.IsIncreasing(t, serial.ProcessedSitemaps)
		assert.Len(t, serial.PDFURLs, 40)
	})

	t.Run("malformed sitemap is a parse error", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		bad := base + "/bad.xml"
		s := newSite(map[string]string{
			root: index(bad),
			bad:  "<urlset><url><loc>broken",
		})
		c := newCrawler(s, seeds(root))

		report, err := c.Crawl(context.Background(), newTarget(t, 2))

		require.NoError(t, err)
		require.Len(t, report.Errors, 1)
		assert.True(t, strings.HasPrefix(report.Errors[0], "Parse error for "+bad+": "), report.Errors[0])
		assert.Contains(t, report.ProcessedSitemaps, bad)
	})

	t.Run("worker panic is recovered", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		boom := base + "/boom.xml"
		fine := base + "/fine.xml"
		s := newSite(map[string]string{
			root: index(boom, fine),
			boom: "boom",
			fine: urlset(base + "/fine.pdf"),
		})
		parser := etree.NewParser()
		c := newCrawler(s, seeds(root))
		c.Parser = &mock.SitemapParser{
			ParseFn: func(data []byte, scope sitepdf.Scope) (*sitepdf.SitemapDocument, error) {
				if string(data) == "boom" {
					panic("unexpected element")
				}
				return parser.Parse(data, scope)
			},
		}

		report, err := c.Crawl(context.Background(), newTarget(t, 2))

		require.NoError(t, err)
		assert.Equal(t, []string{"Error processing " + boom + ": unexpected element"}, report.Errors)
		assert.Equal(t, []string{base + "/fine.pdf"}, report.PDFURLs)
		assert.Contains(t, report.ProcessedSitemaps, boom)
	})

	t.Run("identical content at another URL is expanded once", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		one := base + "/one.xml"
		two := base + "/two.xml"
		child := base + "/child.xml"
		body := index(child)
		s := newSite(map[string]string{
			root:  index(one, two),
			one:   body,
			two:   body,
			child: urlset(base + "/same.pdf"),
		})
		c := newCrawler(s, seeds(root))

		report, err := c.Crawl(context.Background(), newTarget(t, 2))

		require.NoError(t, err)
		assert.Empty(t, report.Errors)
		assert.Equal(t, []string{child, one, root, two}, report.ProcessedSitemaps)
		assert.Equal(t, []string{base + "/same.pdf"}, report.PDFURLs)
		assert.Equal(t, 1, s.hitsFor(child))
	})

	t.Run("identical malformed content records an error per URL", func(t *testing.T) {
		t.Parallel()

		shell := base + "/sitemap/"
		plural := base + "/sitemaps.xml"
		page := "<html><body>app shell</body>"
		s := newSite(map[string]string{
			shell:  page,
			plural: page,
		})
		c := newCrawler(s, seeds(shell, plural))

		report, err := c.Crawl(context.Background(), newTarget(t, 2))

		require.NoError(t, err)
		assert.Equal(t, []string{shell, plural}, report.ProcessedSitemaps)
		require.Len(t, report.Errors, 2)
		sort.Strings(report.Errors)
		assert.True(t, strings.HasPrefix(report.Errors[0], "Parse error for "+shell+": "), report.Errors[0])
		assert.True(t, strings.HasPrefix(report.Errors[1], "Parse error for "+plural+": "), report.Errors[1])
	})

	t.Run("URL filter drops PDFs", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		s := newSite(map[string]string{
			root: urlset(base+"/grad/a.pdf", base+"/news/b.pdf", base+"/grad/old/c.pdf"),
		})
		filter, err := sitepdf.NewURLFilter([]string{`/grad/`}, []string{`/old/`})
		require.NoError(t, err)
		c := newCrawler(s, seeds(root))
		c.Filter = filter

		report, err := c.Crawl(context.Background(), newTarget(t, 1))

		require.NoError(t, err)
		assert.Equal(t, []string{base + "/grad/a.pdf"}, report.PDFURLs)
	})

	t.Run("applies politeness delay before every request", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		a := base + "/a.xml"
		s := newSite(map[string]string{
			root: index(a),
			a:    urlset(base + "/a.pdf"),
		})
		var mu sync.Mutex
		var delays []time.Duration
		c := newCrawler(s, seeds(root))
		c.Sleep = func(_ context.Context, d time.Duration) error {
			mu.Lock()
			delays = append(delays, d)
			mu.Unlock()
			return nil
		}
		target, err := sitepdf.NewTarget(base, sitepdf.WithDelay(250*time.Millisecond))
		require.NoError(t, err)

		_, err = c.Crawl(context.Background(), target)

		require.NoError(t, err)
		assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond}, delays)
	})

	t.Run("emits progress after each batch", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		a := base + "/a.xml"
		b := base + "/b.xml"
		s := newSite(map[string]string{
			root: index(a, b),
			a:    urlset(base + "/a.pdf"),
			b:    urlset(base + "/b.pdf"),
		})
		var events []crawl.ProgressEvent
		c := newCrawler(s, seeds(root))
		c.Progress = func(e crawl.ProgressEvent) {
			events = append(events, e)
		}

		_, err := c.Crawl(context.Background(), newTarget(t, 2))

		require.NoError(t, err)
		assert.Equal(t, []crawl.ProgressEvent{
			{Batch: 1, Size: 1, Processed: 1, Pending: 2, PDFs: 0, Errors: 0},
			{Batch: 2, Size: 2, Processed: 3, Pending: 0, PDFs: 2, Errors: 0},
		}, events)
	})

	t.Run("cancellation returns partial report", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		a := base + "/a.xml"
		s := newSite(map[string]string{
			root: index(a),
			a:    urlset(base + "/a.pdf"),
		})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		c := newCrawler(s, seeds(root))
		c.Progress = func(crawl.ProgressEvent) { cancel() }

		report, err := c.Crawl(ctx, newTarget(t, 1))

		require.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, report)
		assert.Equal(t, []string{root}, report.ProcessedSitemaps)
		assert.Equal(t, 0, s.hitsFor(a))
	})

	t.Run("slow sitemap times out without failing the crawl", func(t *testing.T) {
		t.Parallel()

		root := base + "/sitemap.xml"
		slow := base + "/slow.xml"
		fast := base + "/fast.xml"
		s := newSite(map[string]string{
			root: index(slow, fast),
			fast: urlset(base + "/fast.pdf"),
		})
		next := s.fetcher()
		c := newCrawler(s, seeds(root))
		c.Fetcher = &mock.SitemapFetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				if url != slow {
					return next.Fetch(ctx, url)
				}
				<-ctx.Done()
				return nil, &sitepdf.FetchError{Kind: sitepdf.FetchTimeout, URL: url, Err: ctx.Err()}
			},
		}
		target, err := sitepdf.NewTarget(base,
			sitepdf.WithConcurrency(2),
			sitepdf.WithDelay(0),
			sitepdf.WithTimeout(20*time.Millisecond),
		)
		require.NoError(t, err)

		report, err := c.Crawl(context.Background(), target)

		require.NoError(t, err)
		assert.Equal(t, []string{base + "/fast.pdf"}, report.PDFURLs)
		require.Len(t, report.Errors, 1)
		assert.True(t, strings.HasPrefix(report.Errors[0], "Request error for "+slow+": "), report.Errors[0])
		assert.Contains(t, report.ProcessedSitemaps, slow)
	})

	t.Run("discovery error is returned", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(newSite(nil), &mock.SitemapDiscoverer{
			DiscoverFn: func(context.Context, sitepdf.Target) ([]string, error) {
				return nil, errors.New("boom")
			},
		})

		_, err := c.Crawl(context.Background(), newTarget(t, 1))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "sitemap discovery")
	})
}

type scopeFunc func(string) bool

func (f scopeFunc) Contains(rawURL string) bool { return f(rawURL) }
