// Package etree implements sitepdf.SitemapParser on top of beevik/etree.
package etree

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/sitepdf"
	"golang.org/x/net/html/charset"
)

// Ensure Parser implements sitepdf.SitemapParser at compile time.
var _ sitepdf.SitemapParser = (*Parser)(nil)

// Parser understands sitemap indexes, URL sets and plain-text URL lists.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse classifies data and extracts in-scope URLs.
//
// XML is tried first: every <sitemap><loc> becomes a child sitemap and
// every <url><loc> a page. When the body is not XML, or is XML without
// either element, each line beginning with "http" is taken as a page URL.
// A body that fails XML parsing and contains no such line is malformed.
func (p *Parser) Parse(data []byte, scope sitepdf.Scope) (*sitepdf.SitemapDocument, error) {
	c := newCollector(scope)

	xmlDoc := etree.NewDocument()
	xmlDoc.ReadSettings.CharsetReader = charset.NewReaderLabel
	xmlErr := xmlDoc.ReadFromBytes(data)

	found := false
	if xmlErr == nil && xmlDoc.Root() != nil {
		sitemaps := xmlDoc.FindElements("//sitemap")
		for _, el := range sitemaps {
			if loc := locText(el); loc != "" {
				c.addSitemap(loc)
			}
		}

		urls := xmlDoc.FindElements("//url")
		for _, el := range urls {
			if loc := locText(el); loc != "" {
				c.addPage(loc)
			}
		}

		found = len(sitemaps) > 0 || len(urls) > 0
	}

	if !found {
		matched := c.scanText(data)
		if xmlErr != nil && !matched {
			return c.doc, &sitepdf.ParseError{Err: xmlErr}
		}
	}

	return c.doc, nil
}

func locText(el *etree.Element) string {
	loc := el.SelectElement("loc")
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(loc.Text())
}

// collector accumulates a SitemapDocument, dropping out-of-scope and
// repeated URLs.
type collector struct {
	scope sitepdf.Scope
	doc   *sitepdf.SitemapDocument
	seen  map[string]bool
}

func newCollector(scope sitepdf.Scope) *collector {
	return &collector{
		scope: scope,
		doc:   &sitepdf.SitemapDocument{},
		seen:  make(map[string]bool),
	}
}

func (c *collector) addSitemap(u string) {
	if !c.scope.Contains(u) || c.seen["s"+u] {
		return
	}
	c.seen["s"+u] = true
	c.doc.Sitemaps = append(c.doc.Sitemaps, u)
}

func (c *collector) addPage(u string) {
	if !c.scope.Contains(u) || c.seen["p"+u] {
		return
	}
	c.seen["p"+u] = true
	c.doc.Pages = append(c.doc.Pages, u)
	if sitepdf.IsPDF(u) {
		c.doc.PDFs = append(c.doc.PDFs, u)
	}
}

// scanText treats data as a newline-delimited URL list and reports whether
// any line looked like a URL, in scope or not.
func (c *collector) scanText(data []byte) bool {
	matched := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "http") {
			continue
		}
		matched = true
		c.addPage(line)
	}
	return matched
}
