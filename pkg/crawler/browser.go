package crawler

import (
	"context"
	"net/http"
	"time"
)

// Cookie is a normalized browser cookie, independent of the underlying
// automation driver's representation.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	Expires  time.Time
}

// NavigationRecord is the browser's record of the most recent top-level
// request, used both to classify a candidate's outcome and to drive
// adaptive delay.
type NavigationRecord struct {
	URL            string
	Status         int
	RedirectURL    string // non-empty if the navigation was itself redirected
	TransportError error  // set if the browser could not complete the request
	Header         http.Header
}

// BrowserSession is an opaque, single-use capability wrapping one real
// browser tab. A CrawlLoop opens exactly one BrowserSession per session
// (acquired at start/resume) and closes it on exit; implementations need
// not be safe for concurrent use.
type BrowserSession interface {
	// Open navigates the session to rawURL and blocks until the page's load
	// event fires, ctx is done, or the configured page-load timeout elapses.
	Open(ctx context.Context, rawURL string) error
	// CurrentURL returns the tab's URL after any redirects the browser
	// itself followed (including client-side/JS redirects).
	CurrentURL() (string, error)
	// Cookies returns the cookies visible to the current page.
	Cookies() ([]Cookie, error)
	// StartCapture begins recording network activity for the next
	// navigation; call before Open.
	StartCapture() error
	// LastNavigation reports the record for the most recent top-level
	// request captured since the last StartCapture call.
	LastNavigation() (NavigationRecord, bool, error)
	// Eval runs a JavaScript expression in the page and decodes its result
	// into out.
	Eval(ctx context.Context, expression string, out any) error
	// Close releases the tab. A BrowserSession is consumed after Close; any
	// further method call other than Close returns
	// ErrOpaqueCapabilityConsumed, and a repeated Close returns nil.
	Close() error
}

// BrowserFactory opens a fresh BrowserSession. A SessionController holds
// one factory for the lifetime of a session and calls it once, at
// start/resume.
type BrowserFactory func(ctx context.Context) (BrowserSession, error)
