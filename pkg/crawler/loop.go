package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"
)

// CrawlLoop is the single-threaded orchestrator binding the probe, the
// browser, the frontier, the delay controller, and the callback registry.
// It drives candidates to completion one at a time until the frontier is
// exhausted or Stop is called.
type CrawlLoop struct {
	frontier  *CrawlFrontier
	probe     HttpProbe
	browser   BrowserSession
	delay     DelayController
	callbacks *CallbackRegistry
	stats     *StatsCounter

	stopRequested atomic.Bool
}

// NewCrawlLoop wires the six collaborators a running session needs. All
// arguments are required.
func NewCrawlLoop(frontier *CrawlFrontier, probe HttpProbe, browser BrowserSession, delay DelayController, callbacks *CallbackRegistry, stats *StatsCounter) *CrawlLoop {
	return &CrawlLoop{
		frontier:  frontier,
		probe:     probe,
		browser:   browser,
		delay:     delay,
		callbacks: callbacks,
		stats:     stats,
	}
}

// Stop requests cooperative shutdown; the loop checks the flag between
// iterations and again after each sleep wakeup.
func (l *CrawlLoop) Stop() { l.stopRequested.Store(true) }

// Run drives the frontier to completion. It returns nil when the frontier
// empties naturally or Stop was requested; any non-nil error is a fatal
// programmer-error condition (per the ERROR HANDLING DESIGN) and the caller
// must release scoped resources before surfacing it.
func (l *CrawlLoop) Run(ctx context.Context) error {
	first := true
	for {
		if l.stopRequested.Load() {
			return nil
		}
		if !first {
			wait, err := l.delay.Next()
			if err != nil {
				return err
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				l.stopRequested.Store(true)
			}
			if l.stopRequested.Load() {
				return nil
			}
		}
		first = false

		if !l.frontier.HasNextCandidate() {
			return nil
		}
		candidate, err := l.frontier.NextCandidate()
		if err != nil {
			return err
		}

		if err := l.processCandidate(ctx, candidate); err != nil {
			return err
		}
	}
}

// processCandidate runs one candidate through HEAD probe, optional browser
// fetch, and outcome classification, dispatching exactly one terminal
// event.
func (l *CrawlLoop) processCandidate(ctx context.Context, candidate CrawlCandidate) error {
	rawURL := candidate.Request.RawURL()

	head, err := l.probe.Head(ctx, rawURL)
	if err != nil {
		return l.fireAndRecord(Event{Kind: NetworkError, Candidate: candidate, Err: err, At: time.Now()}, l.stats.RecordNetworkError)
	}

	if head.Status >= 300 && head.Status < 400 {
		if location := head.Header.Get("Location"); location != "" {
			return l.fireRedirect(candidate, rawURL, location)
		}
		// 3xx with no Location is treated as a normal response and falls
		// through to the content-type check below.
	}

	if !head.IsHTML() {
		resp := head
		return l.fireAndRecord(Event{Kind: NonHtmlResponse, Candidate: candidate, Response: &resp, At: time.Now()}, l.stats.RecordNonHtmlResponse)
	}

	if err := l.browser.StartCapture(); err != nil {
		return fmt.Errorf("crawler: starting browser capture: %w", err)
	}
	openErr := l.browser.Open(ctx, rawURL)
	if openErr != nil {
		return l.fireAndRecord(Event{Kind: PageLoadTimeout, Candidate: candidate, Err: openErr, At: time.Now()}, l.stats.RecordPageLoadTimeout)
	}

	if err := l.syncCookies(candidate.Request.Domain().String()); err != nil {
		return fmt.Errorf("crawler: syncing cookies: %w", err)
	}

	nav, ok, err := l.browser.LastNavigation()
	if err != nil {
		return fmt.Errorf("crawler: reading navigation capture: %w", err)
	}
	if !ok {
		return &ClassificationError{URL: rawURL, Err: errNoNavigationRecord}
	}

	if nav.TransportError != nil {
		return l.fireAndRecord(Event{Kind: NetworkError, Candidate: candidate, Err: nav.TransportError, At: time.Now()}, l.stats.RecordNetworkError)
	}

	currentURL, err := l.browser.CurrentURL()
	if err != nil {
		return fmt.Errorf("crawler: reading current URL: %w", err)
	}
	if nav.RedirectURL != "" {
		return l.fireRedirect(candidate, rawURL, nav.RedirectURL)
	}
	if currentURL != rawURL {
		return l.fireRedirect(candidate, rawURL, currentURL)
	}

	if nav.Status >= 400 && nav.Status < 600 {
		resp := Response{Status: nav.Status, Header: nav.Header, FinalURL: currentURL}
		return l.fireAndRecord(Event{Kind: ResponseError, Candidate: candidate, Response: &resp, At: time.Now()}, l.stats.RecordResponseError)
	}

	resp := Response{Status: nav.Status, Header: nav.Header, FinalURL: currentURL}
	return l.fireAndRecord(Event{Kind: ResponseSuccess, Candidate: candidate, Response: &resp, At: time.Now()}, l.stats.RecordResponseSuccess)
}

// errNoNavigationRecord is the fatal invariant violation when the browser
// recorded nothing for a navigation it just completed.
var errNoNavigationRecord = fmt.Errorf("crawler: browser recorded no navigation entry")

// fireRedirect resolves location against rawURL, feeds the resolved URL
// back into the frontier inheriting the candidate's priority and metadata,
// and dispatches RequestRedirect.
func (l *CrawlLoop) fireRedirect(candidate CrawlCandidate, rawURL, location string) error {
	resolved, err := resolveRedirect(rawURL, location)
	if err != nil {
		return fmt.Errorf("crawler: resolving redirect %q from %q: %w", location, rawURL, err)
	}
	redirectReq, err := NewCrawlRequest(resolved, candidate.Request.Priority(), candidate.Request.Metadata())
	if err != nil {
		return fmt.Errorf("crawler: building redirect request: %w", err)
	}
	l.frontier.FeedRequest(redirectReq, false)
	return l.fireAndRecord(Event{Kind: RequestRedirect, Candidate: candidate, RedirectURL: resolved, At: time.Now()}, l.stats.RecordRequestRedirect)
}

func resolveRedirect(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	target, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(target).String(), nil
}

// fireAndRecord updates the terminal-outcome stats counter then dispatches
// the event through the callback registry. Handler errors propagate.
func (l *CrawlLoop) fireAndRecord(ev Event, record func()) error {
	record()
	if l.callbacks == nil {
		return nil
	}
	_, err := l.callbacks.Dispatch(ev)
	return err
}

// syncCookies copies every cookie currently visible in the browser session
// into the probe's cookie jar, scoped to domain. One-way: browser → probe.
func (l *CrawlLoop) syncCookies(domain string) error {
	cookies, err := l.browser.Cookies()
	if err != nil {
		return err
	}
	for _, c := range cookies {
		if err := l.probe.SyncCookie(domain, c); err != nil {
			return err
		}
	}
	return nil
}
