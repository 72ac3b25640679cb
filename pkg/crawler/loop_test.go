package crawler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// errTest is a shared sentinel for tests that only care that an error
// propagated, not which one.
var errTest = errors.New("crawler_test: scripted failure")

// fakeProbe is a hand-rolled HttpProbe stub scripted per test.
type fakeProbe struct {
	headResp Response
	headErr  error
	cookies  map[string][]Cookie
	closed   bool
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{cookies: make(map[string][]Cookie)}
}

func (p *fakeProbe) Head(context.Context, string) (Response, error) { return p.headResp, p.headErr }
func (p *fakeProbe) Get(context.Context, string) (Response, []byte, error) {
	return p.headResp, nil, p.headErr
}
func (p *fakeProbe) SyncCookie(domain string, c Cookie) error {
	p.cookies[domain] = append(p.cookies[domain], c)
	return nil
}
func (p *fakeProbe) Close() error { p.closed = true; return nil }

// fakeBrowser is a hand-rolled BrowserSession stub scripted per test.
type fakeBrowser struct {
	openErr    error
	currentURL string
	nav        NavigationRecord
	hasNav     bool
	navErr     error
	cookies    []Cookie
	closed     bool
}

func (b *fakeBrowser) Open(context.Context, string) error { return b.openErr }
func (b *fakeBrowser) CurrentURL() (string, error)        { return b.currentURL, nil }
func (b *fakeBrowser) Cookies() ([]Cookie, error)          { return b.cookies, nil }
func (b *fakeBrowser) StartCapture() error                { return nil }
func (b *fakeBrowser) LastNavigation() (NavigationRecord, bool, error) {
	return b.nav, b.hasNav, b.navErr
}
func (b *fakeBrowser) Eval(context.Context, string, any) error { return nil }
func (b *fakeBrowser) Close() error                            { b.closed = true; return nil }

func newTestLoop(t *testing.T, probe HttpProbe, browser BrowserSession) (*CrawlLoop, *CrawlFrontier, *StatsCounter, *CallbackRegistry) {
	t.Helper()
	stats := &StatsCounter{}
	cfg, err := NewCrawlerConfiguration(crawler_testSeeds(t, "https://s.com/p")...)
	require.NoError(t, err)
	frontier := NewCrawlFrontier(cfg, stats)
	callbacks := NewCallbackRegistry()
	loop := NewCrawlLoop(frontier, probe, browser, fixedDelay(0), callbacks, stats)
	return loop, frontier, stats, callbacks
}

func TestCrawlLoop_HeadTransportFailureRecordsNetworkError(t *testing.T) {
	t.Parallel()
	probe := newFakeProbe()
	probe.headErr = errTest
	loop, frontier, stats, _ := newTestLoop(t, probe, &fakeBrowser{})

	cand, err := frontier.NextCandidate()
	require.NoError(t, err)
	require.NoError(t, loop.processCandidate(context.Background(), cand))
	require.EqualValues(t, 1, stats.Snapshot().NetworkError)
}

func TestCrawlLoop_HeadRedirectFeedsFrontierAndRecordsRedirect(t *testing.T) {
	t.Parallel()
	probe := newFakeProbe()
	probe.headResp = Response{Status: http.StatusFound, Header: http.Header{"Location": []string{"/new"}}}
	loop, frontier, stats, _ := newTestLoop(t, probe, &fakeBrowser{})

	cand, err := frontier.NextCandidate()
	require.NoError(t, err)
	require.NoError(t, loop.processCandidate(context.Background(), cand))
	require.EqualValues(t, 1, stats.Snapshot().RequestRedirect)
	require.Equal(t, 1, frontier.Len(), "resolved redirect target must be admitted")
}

func TestCrawlLoop_NonHTMLHeadRecordsNonHtmlResponse(t *testing.T) {
	t.Parallel()
	probe := newFakeProbe()
	probe.headResp = Response{Status: http.StatusOK, Header: http.Header{"Content-Type": []string{"application/pdf"}}}
	loop, frontier, stats, _ := newTestLoop(t, probe, &fakeBrowser{})

	cand, err := frontier.NextCandidate()
	require.NoError(t, err)
	require.NoError(t, loop.processCandidate(context.Background(), cand))
	require.EqualValues(t, 1, stats.Snapshot().NonHtmlResponse)
}

func TestCrawlLoop_BrowserOpenFailureRecordsPageLoadTimeout(t *testing.T) {
	t.Parallel()
	probe := newFakeProbe()
	probe.headResp = Response{Status: http.StatusOK, Header: http.Header{"Content-Type": []string{"text/html"}}}
	browser := &fakeBrowser{openErr: context.DeadlineExceeded}
	loop, frontier, stats, _ := newTestLoop(t, probe, browser)

	cand, err := frontier.NextCandidate()
	require.NoError(t, err)
	require.NoError(t, loop.processCandidate(context.Background(), cand))
	require.EqualValues(t, 1, stats.Snapshot().PageLoadTimeout)
}

func TestCrawlLoop_NavigationTransportErrorRecordsNetworkError(t *testing.T) {
	t.Parallel()
	probe := newFakeProbe()
	probe.headResp = Response{Status: http.StatusOK, Header: http.Header{"Content-Type": []string{"text/html"}}}
	browser := &fakeBrowser{
		currentURL: "https://s.com/p",
		hasNav:     true,
		nav:        NavigationRecord{TransportError: errTest},
	}
	loop, frontier, stats, _ := newTestLoop(t, probe, browser)

	cand, err := frontier.NextCandidate()
	require.NoError(t, err)
	require.NoError(t, loop.processCandidate(context.Background(), cand))
	require.EqualValues(t, 1, stats.Snapshot().NetworkError)
}

func TestCrawlLoop_NavigationMismatchedCurrentURLIsRedirect(t *testing.T) {
	t.Parallel()
	probe := newFakeProbe()
	probe.headResp = Response{Status: http.StatusOK, Header: http.Header{"Content-Type": []string{"text/html"}}}
	browser := &fakeBrowser{
		currentURL: "https://s.com/elsewhere",
		hasNav:     true,
		nav:        NavigationRecord{Status: 200},
	}
	loop, frontier, stats, _ := newTestLoop(t, probe, browser)

	cand, err := frontier.NextCandidate()
	require.NoError(t, err)
	require.NoError(t, loop.processCandidate(context.Background(), cand))
	require.EqualValues(t, 1, stats.Snapshot().RequestRedirect)
}

func TestCrawlLoop_NavigationErrorStatusRecordsResponseError(t *testing.T) {
	t.Parallel()
	probe := newFakeProbe()
	probe.headResp = Response{Status: http.StatusOK, Header: http.Header{"Content-Type": []string{"text/html"}}}
	browser := &fakeBrowser{
		currentURL: "https://s.com/p",
		hasNav:     true,
		nav:        NavigationRecord{Status: 500},
	}
	loop, frontier, stats, _ := newTestLoop(t, probe, browser)

	cand, err := frontier.NextCandidate()
	require.NoError(t, err)
	require.NoError(t, loop.processCandidate(context.Background(), cand))
	require.EqualValues(t, 1, stats.Snapshot().ResponseError)
}

func TestCrawlLoop_SuccessfulNavigationSyncsCookiesAndRecordsSuccess(t *testing.T) {
	t.Parallel()
	probe := newFakeProbe()
	probe.headResp = Response{Status: http.StatusOK, Header: http.Header{"Content-Type": []string{"text/html"}}}
	browser := &fakeBrowser{
		currentURL: "https://s.com/p",
		hasNav:     true,
		nav:        NavigationRecord{Status: 200},
		cookies:    []Cookie{{Name: "session", Value: "abc"}},
	}
	loop, frontier, stats, _ := newTestLoop(t, probe, browser)

	cand, err := frontier.NextCandidate()
	require.NoError(t, err)
	require.NoError(t, loop.processCandidate(context.Background(), cand))
	require.EqualValues(t, 1, stats.Snapshot().ResponseSuccess)
	require.Len(t, probe.cookies["s.com"], 1)
}

func TestCrawlLoop_MissingNavigationRecordIsFatal(t *testing.T) {
	t.Parallel()
	probe := newFakeProbe()
	probe.headResp = Response{Status: http.StatusOK, Header: http.Header{"Content-Type": []string{"text/html"}}}
	browser := &fakeBrowser{currentURL: "https://s.com/p", hasNav: false}
	loop, frontier, _, _ := newTestLoop(t, probe, browser)

	cand, err := frontier.NextCandidate()
	require.NoError(t, err)
	require.ErrorIs(t, loop.processCandidate(context.Background(), cand), errNoNavigationRecord)
}
