package crawler

import (
	"context"
	"mime"
	"net/http"
	"strings"
)

// Response is the normalized outcome of an HttpProbe.Head or .Get call.
type Response struct {
	Status   int
	Header   http.Header
	FinalURL string // equals the requested URL for Head, which follows no redirects
}

// MediaType returns the Content-Type header's media-type token (the text
// before any ";"), trimmed and case-folded, defaulting to "text/plain" when
// the header is absent or unparseable.
func (r Response) MediaType() string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return "text/plain"
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "text/plain"
	}
	return strings.ToLower(mediaType)
}

// IsHTML reports whether the response's media type is renderable HTML.
func (r Response) IsHTML() bool {
	mt := r.MediaType()
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// HttpProbe is an opaque, reusable capability for lightweight
// classification requests and file downloads. Implementations must not
// follow redirects transparently: Head and Get report the first response
// verbatim (FinalURL == the requested URL) so the CrawlLoop can make its
// own redirect-handling decision.
type HttpProbe interface {
	// Head issues a HEAD request against rawURL.
	Head(ctx context.Context, rawURL string) (Response, error)
	// Get issues a GET request against rawURL; used by downloadFile.
	Get(ctx context.Context, rawURL string) (Response, []byte, error)
	// SyncCookie upserts a cookie observed on the browser side into the
	// probe's own cookie jar, scoped to domain.
	SyncCookie(domain string, cookie Cookie) error
	// Close releases the probe's underlying transport and cookie jar.
	Close() error
}
