// Package crawler implements the politeness-aware crawl frontier and crawl
// loop: request admission, deduplication, priority ordering, HEAD-probe and
// browser-driven classification, adaptive delay, and session lifecycle.
package crawler

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ErrInvalidDomain is returned when a host cannot be parsed into a
// public-suffix-qualified registrable domain.
var ErrInvalidDomain = errors.New("crawler: host is not a public-suffix-qualified domain")

// CrawlDomain is a normalized, case-folded domain name with a
// subdomain-containment test. Two CrawlDomain values are equal iff their
// label sequences are identical.
type CrawlDomain struct {
	Parts []string
}

// NewCrawlDomain builds a CrawlDomain from a hostname. Construction fails if
// the host does not qualify as a domain registrable under the public suffix
// list (bare TLDs, public suffixes such as "co.uk" on their own, and
// unparseable hosts are all rejected).
func NewCrawlDomain(host string) (CrawlDomain, error) {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if host == "" {
		return CrawlDomain{}, ErrInvalidDomain
	}

	// EffectiveTLDPlusOne fails unless host has at least one label above a
	// recognized public suffix; that's exactly the "public-suffix-qualified"
	// precondition the core requires, so its error doubles as our validation.
	if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
		return CrawlDomain{}, fmt.Errorf("%w: %s: %v", ErrInvalidDomain, host, err)
	}

	return CrawlDomain{Parts: strings.Split(host, ".")}, nil
}

// String renders the domain as a dotted label sequence.
func (d CrawlDomain) String() string {
	return strings.Join(d.Parts, ".")
}

// Equal reports whether two domains share the same label sequence.
func (d CrawlDomain) Equal(other CrawlDomain) bool {
	if len(d.Parts) != len(other.Parts) {
		return false
	}
	for i := range d.Parts {
		if d.Parts[i] != other.Parts[i] {
			return false
		}
	}
	return true
}

// Contains reports whether other's labels end with d's labels, i.e. other is
// the same domain or a subdomain of d.
func (d CrawlDomain) Contains(other CrawlDomain) bool {
	if len(other.Parts) < len(d.Parts) {
		return false
	}
	offset := len(other.Parts) - len(d.Parts)
	for i, part := range d.Parts {
		if other.Parts[offset+i] != part {
			return false
		}
	}
	return true
}
