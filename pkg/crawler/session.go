package crawler

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// sessionState is the SessionController's internal lifecycle state.
type sessionState int

const (
	stateIdle sessionState = iota
	stateRunning
	stateStopped
)

// SessionOption customizes a SessionController at construction time,
// principally by registering default event handlers (the "on..." callback
// overrides).
type SessionOption func(*SessionController)

// OnBrowserInit registers a hook invoked once the BrowserSession has been
// acquired, before the frontier starts draining.
func OnBrowserInit(fn func(BrowserSession) error) SessionOption {
	return func(s *SessionController) { s.onBrowserInit = fn }
}

// OnStart registers a hook invoked after scoped resources are acquired but
// before the loop begins, on both start and resume.
func OnStart(fn func() error) SessionOption {
	return func(s *SessionController) { s.onStart = fn }
}

// OnStop registers a hook invoked after the loop exits, before scoped
// resources are released.
func OnStop(fn func() error) SessionOption {
	return func(s *SessionController) { s.onStop = fn }
}

func withDefaultHandler(kind EventKind, assign func(*SessionController, Handler)) func(h Handler) SessionOption {
	return func(h Handler) SessionOption {
		return func(s *SessionController) { assign(s, h) }
	}
}

// OnResponseSuccess, OnNonHtmlResponse, OnNetworkError, OnResponseError,
// OnRequestRedirect, and OnPageLoadTimeout register the default handler for
// their respective EventKind, used when no pattern-matched handler fires.
var (
	OnResponseSuccess = withDefaultHandler(ResponseSuccess, func(s *SessionController, h Handler) { s.callbacks.RegisterDefault(ResponseSuccess, h) })
	OnNonHtmlResponse = withDefaultHandler(NonHtmlResponse, func(s *SessionController, h Handler) { s.callbacks.RegisterDefault(NonHtmlResponse, h) })
	OnNetworkError    = withDefaultHandler(NetworkError, func(s *SessionController, h Handler) { s.callbacks.RegisterDefault(NetworkError, h) })
	OnResponseError   = withDefaultHandler(ResponseError, func(s *SessionController, h Handler) { s.callbacks.RegisterDefault(ResponseError, h) })
	OnRequestRedirect = withDefaultHandler(RequestRedirect, func(s *SessionController, h Handler) { s.callbacks.RegisterDefault(RequestRedirect, h) })
	OnPageLoadTimeout = withDefaultHandler(PageLoadTimeout, func(s *SessionController, h Handler) { s.callbacks.RegisterDefault(PageLoadTimeout, h) })
)

// SessionController owns the single-writer lifecycle of one crawl session:
// constructing or restoring the frontier, acquiring the opaque probe and
// browser capabilities, running the CrawlLoop, and releasing everything on
// exit through every path, including a fatal error from onStart or the
// loop itself.
type SessionController struct {
	mu    sync.Mutex
	state sessionState

	cfg       CrawlerConfiguration
	frontier  *CrawlFrontier
	stats     *StatsCounter
	callbacks *CallbackRegistry

	browserFactory BrowserFactory
	probeFactory   func() (HttpProbe, error)

	browser BrowserSession
	probe   HttpProbe
	loop    *CrawlLoop

	elapsed   time.Duration
	runStart  time.Time
	hasLoaded bool // true once a snapshot has been Load()ed

	onBrowserInit func(BrowserSession) error
	onStart       func() error
	onStop        func() error
}

// NewSessionController builds a controller for cfg. browserFactory and
// probeFactory are invoked once per Start/Resume call to acquire the
// session's scoped capabilities.
func NewSessionController(cfg CrawlerConfiguration, browserFactory BrowserFactory, probeFactory func() (HttpProbe, error), opts ...SessionOption) *SessionController {
	s := &SessionController{
		cfg:            cfg,
		stats:          &StatsCounter{},
		callbacks:      NewCallbackRegistry(),
		browserFactory: browserFactory,
		probeFactory:   probeFactory,
	}
	s.frontier = NewCrawlFrontier(cfg, s.stats)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterCustomCallback adds a pattern-gated handler for kind.
func (s *SessionController) RegisterCustomCallback(kind EventKind, urlPattern string, h Handler) error {
	return s.callbacks.Register(kind, urlPattern, h)
}

// CrawlerConfiguration returns the session's immutable configuration.
func (s *SessionController) CrawlerConfiguration() CrawlerConfiguration { return s.cfg }

// CrawlStats returns a snapshot of the running counters (see
// StatsCounter.Snapshot). Safe to call from any goroutine while a session is
// running.
func (s *SessionController) CrawlStats() StatsSnapshot { return s.stats.Snapshot() }

// Start transitions the session to RUNNING: acquires a probe and browser,
// builds the delay controller, seeds the frontier from configuration (a
// fresh start only — not on resume), invokes onStart, runs the loop to
// completion, invokes onStop, and releases the acquired capabilities. It is
// forbidden to call Start while already running.
func (s *SessionController) Start(ctx context.Context) error {
	return s.run(ctx, false)
}

// Resume behaves like Start but requires a snapshot to have been Load()ed
// first: it does not re-seed the frontier or reset stats, and it
// accumulates run duration across the prior run(s).
func (s *SessionController) Resume(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.hasLoaded
	s.mu.Unlock()
	if !loaded {
		return ErrSessionNotRunning
	}
	return s.run(ctx, true)
}

func (s *SessionController) run(ctx context.Context, resuming bool) error {
	s.mu.Lock()
	if s.state == stateRunning {
		s.mu.Unlock()
		return ErrSessionAlreadyRunning
	}
	s.state = stateRunning
	s.runStart = time.Now()
	s.mu.Unlock()

	var runErr error
	defer func() {
		s.mu.Lock()
		s.elapsed += time.Since(s.runStart)
		s.state = stateStopped
		s.mu.Unlock()
		if s.onStop != nil {
			if err := s.onStop(); err != nil && runErr == nil {
				runErr = err
			}
		}
		s.releaseScopedResources()
	}()

	browser, err := s.browserFactory(ctx)
	if err != nil {
		runErr = err
		return runErr
	}
	s.browser = browser

	if s.onBrowserInit != nil {
		if err := s.onBrowserInit(browser); err != nil {
			runErr = err
			return runErr
		}
	}

	probe, err := s.probeFactory()
	if err != nil {
		runErr = err
		return runErr
	}
	s.probe = probe

	delay, err := NewDelayController(s.cfg, browser)
	if err != nil {
		runErr = err
		return runErr
	}

	if !resuming {
		// Fresh start: the frontier built in NewSessionController already
		// holds the configured seeds.
	}

	s.loop = NewCrawlLoop(s.frontier, probe, browser, delay, s.callbacks, s.stats)

	if s.onStart != nil {
		if err := s.onStart(); err != nil {
			runErr = err
			return runErr
		}
	}

	runErr = s.loop.Run(ctx)
	return runErr
}

// Stop requests cooperative shutdown of a running loop. It is a no-op
// (other than being thread-safe) if no session is running.
func (s *SessionController) Stop() {
	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()
	if loop != nil {
		loop.Stop()
	}
}

func (s *SessionController) releaseScopedResources() {
	s.mu.Lock()
	browser, probe := s.browser, s.probe
	s.browser, s.probe, s.loop = nil, nil, nil
	s.mu.Unlock()
	if browser != nil {
		_ = browser.Close()
	}
	if probe != nil {
		_ = probe.Close()
	}
}

// Crawl feeds one or more additional requests into the running frontier.
// Only valid while the session is RUNNING.
func (s *SessionController) Crawl(requests ...CrawlRequest) error {
	s.mu.Lock()
	running := s.state == stateRunning
	s.mu.Unlock()
	if !running {
		return ErrSessionNotRunning
	}
	for _, req := range requests {
		s.frontier.FeedRequest(req, false)
	}
	return nil
}

// DownloadFile fetches source via the probe's GET and writes the body to
// destination. Only valid while the session is RUNNING.
func (s *SessionController) DownloadFile(ctx context.Context, source string, destination io.Writer) error {
	s.mu.Lock()
	probe, running := s.probe, s.state == stateRunning
	s.mu.Unlock()
	if !running || probe == nil {
		return ErrSessionNotRunning
	}
	_, body, err := probe.Get(ctx, source)
	if err != nil {
		return err
	}
	_, err = io.Copy(destination, bytes.NewReader(body))
	return err
}

// Snapshot assembles a serializable bundle of {configuration, frontier,
// statsCounter, runDuration} and writes it to w as a binary blob.
func (s *SessionController) Snapshot(w io.Writer) error {
	s.mu.Lock()
	elapsed := s.elapsed
	if s.state == stateRunning {
		elapsed += time.Since(s.runStart)
	}
	s.mu.Unlock()

	snap := sessionSnapshot{
		Configuration: s.cfg,
		Pending:       s.frontier.pendingCandidates(),
		Visited:       s.frontier.seenFingerprints(),
		Stats:         s.stats.Snapshot(),
		ElapsedNanos:  int64(elapsed),
	}
	return writeSnapshot(w, snap)
}

// LoadSnapshot restores configuration, frontier state, stats, and elapsed
// duration from r, produced by a prior Snapshot call. It must be called
// before Resume.
func (s *SessionController) LoadSnapshot(r io.Reader) error {
	snap, err := readSnapshot(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = snap.Configuration
	s.stats = &StatsCounter{}
	s.stats.GobDecode(mustGobEncode(snap.Stats))
	s.frontier = newEmptyCrawlFrontier(s.cfg, s.stats)
	s.frontier.restore(snap.Pending, snap.Visited)
	s.elapsed = time.Duration(snap.ElapsedNanos)
	s.hasLoaded = true
	s.state = stateIdle
	return nil
}

// mustGobEncode re-encodes a value this package just decoded; it cannot
// fail for types already proven to round-trip through gob.
func mustGobEncode(v any) []byte {
	b, err := gobEncode(v)
	if err != nil {
		panic(err)
	}
	return b
}
