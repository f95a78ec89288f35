// Package publicsuffix widens the crawl scope to a whole registrable domain
// using the public suffix list from golang.org/x/net.
package publicsuffix

import (
	"net"
	"net/url"
	"strings"

	"github.com/fwojciec/sitepdf"
	"golang.org/x/net/publicsuffix"
)

var _ sitepdf.Scope = (*Scope)(nil)

// Scope accepts any URL whose host shares the registrable domain (eTLD+1)
// of Domain, so "library.university.edu" is in scope for
// "www.university.edu". Hosts the list cannot classify, such as IP
// addresses or "localhost", fall back to sitepdf.MatchHost.
type Scope struct {
	domain      string
	registrable string
}

// NewScope creates a Scope for domain, which may carry a port.
func NewScope(domain string) *Scope {
	return &Scope{domain: domain, registrable: registrable(hostname(domain))}
}

// Contains reports whether rawURL is on the scope's registrable domain.
func (s *Scope) Contains(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	if sitepdf.MatchHost(u.Host, s.domain) {
		return true
	}
	if s.registrable == "" {
		return false
	}
	return registrable(strings.ToLower(u.Hostname())) == s.registrable
}

// registrable returns the eTLD+1 of host, or "" for IP addresses and
// hosts that are themselves public suffixes.
func registrable(host string) string {
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return etld1
}

func hostname(hostport string) string {
	u := url.URL{Host: hostport}
	return strings.ToLower(u.Hostname())
}
