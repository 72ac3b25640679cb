package crawler

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"net/url"
)

// CrawlRequest is an immutable intent to visit one URL with a priority and
// optional opaque metadata. Higher priority wins ties in the frontier.
//
// Metadata, if set, must be registered with gob.Register by the caller for
// it to survive a snapshot round-trip (see SessionController.Snapshot).
type CrawlRequest struct {
	rawURL   string
	priority int
	metadata any
	domain   CrawlDomain
}

// NewCrawlRequest builds a CrawlRequest from an absolute URL. A missing path
// is normalized to "/". Construction fails if the host is not a
// public-suffix-qualified domain.
func NewCrawlRequest(rawURL string, priority int, metadata any) (CrawlRequest, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return CrawlRequest{}, fmt.Errorf("crawler: invalid URL %q: %w", rawURL, err)
	}
	if parsed.Host == "" {
		return CrawlRequest{}, fmt.Errorf("crawler: URL %q has no host", rawURL)
	}
	if parsed.Path == "" {
		parsed.Path = "/"
	}

	domain, err := NewCrawlDomain(parsed.Hostname())
	if err != nil {
		return CrawlRequest{}, err
	}

	return CrawlRequest{
		rawURL:   parsed.String(),
		priority: priority,
		metadata: metadata,
		domain:   domain,
	}, nil
}

// URL parses and returns the request's target URL. Parse errors are not
// expected once the request has been constructed via NewCrawlRequest.
func (r CrawlRequest) URL() *url.URL {
	u, _ := url.Parse(r.rawURL)
	return u
}

// RawURL returns the normalized URL string.
func (r CrawlRequest) RawURL() string { return r.rawURL }

// Priority returns the request's priority; higher wins.
func (r CrawlRequest) Priority() int { return r.priority }

// Metadata returns the opaque user payload, or nil.
func (r CrawlRequest) Metadata() any { return r.metadata }

// Domain returns the request's registrable domain.
func (r CrawlRequest) Domain() CrawlDomain { return r.domain }

// crawlRequestWire is the gob wire representation of a CrawlRequest. The
// domain is derived, not persisted, and is recomputed on decode.
type crawlRequestWire struct {
	RawURL   string
	Priority int
	Metadata any
}

// GobEncode implements gob.GobEncoder.
func (r CrawlRequest) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	wire := crawlRequestWire{RawURL: r.rawURL, Priority: r.priority, Metadata: r.metadata}
	if err := gob.NewEncoder(&buf).Encode(wire); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder, reconstructing the derived domain.
func (r *CrawlRequest) GobDecode(data []byte) error {
	var wire crawlRequestWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&wire); err != nil {
		return err
	}
	parsed, err := url.Parse(wire.RawURL)
	if err != nil {
		return fmt.Errorf("crawler: decoding snapshot URL %q: %w", wire.RawURL, err)
	}
	domain, err := NewCrawlDomain(parsed.Hostname())
	if err != nil {
		return err
	}
	r.rawURL = wire.RawURL
	r.priority = wire.Priority
	r.metadata = wire.Metadata
	r.domain = domain
	return nil
}

// CrawlCandidate is a frontier-internal wrapper adding crawl-depth and
// referer information to an admitted CrawlRequest. Seeds have depth 1 and no
// referer.
type CrawlCandidate struct {
	Request    CrawlRequest
	RefererURL string // empty for seeds
	Depth      int
}
