package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/quietpath/crawlerctl/internal/logger"
	"github.com/quietpath/crawlerctl/pkg/crawler"
)

// Config configures a Session: user agent, page-load timeout, and headless
// flag, passed explicitly into the factory rather than held as package
// globals. The Chrome binary itself is located by FindChromePath.
type Config struct {
	UserAgent   string
	PageTimeout time.Duration
	Headless    bool
}

// DefaultConfig returns sane defaults for headless crawling.
func DefaultConfig() Config {
	return Config{
		UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36 crawlerctl",
		PageTimeout: 30 * time.Second,
		Headless:    true,
	}
}

// Session is the chromedp-backed crawler.BrowserSession reference
// implementation: it drives one headless Chrome tab, records the most
// recent top-level document response via the Network domain's events, and
// exposes cookie and JS-eval access for the crawl loop and the adaptive
// delay controller.
type Session struct {
	cfg Config

	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	mu      sync.Mutex
	hasNav  bool
	lastNav crawler.NavigationRecord
	closed  bool
}

// NewFactory returns a crawler.BrowserFactory that opens one Session per
// call, suitable for crawler.NewSessionController.
func NewFactory(cfg Config) crawler.BrowserFactory {
	return func(ctx context.Context) (crawler.BrowserSession, error) {
		return newSession(ctx, cfg)
	}
}

func newSession(ctx context.Context, cfg Config) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if chromePath := FindChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("browser: enabling network domain: %w", err)
	}

	s := &Session{
		cfg:         cfg,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         tabCtx,
		cancel:      tabCancel,
	}

	chromedp.ListenTarget(tabCtx, s.handleNetworkEvent)

	logger.Debug("browser session created", "headless", cfg.Headless, "pageTimeout", cfg.PageTimeout)
	return s, nil
}

// handleNetworkEvent records the top-level document's response, redirect,
// or transport failure into the session's navigation capture.
func (s *Session) handleNetworkEvent(ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if e.Type == network.ResourceTypeDocument && e.RedirectResponse != nil {
			s.mu.Lock()
			s.lastNav.RedirectURL = e.Request.URL
			s.hasNav = true
			s.mu.Unlock()
		}
	case *network.EventResponseReceived:
		if e.Type == network.ResourceTypeDocument {
			s.mu.Lock()
			s.lastNav.URL = e.Response.URL
			s.lastNav.Status = int(e.Response.Status)
			s.lastNav.Header = headersFromCDP(e.Response.Headers)
			s.hasNav = true
			s.mu.Unlock()
		}
	case *network.EventLoadingFailed:
		if e.Type == network.ResourceTypeDocument {
			s.mu.Lock()
			s.lastNav.TransportError = errors.New(e.ErrorText)
			s.hasNav = true
			s.mu.Unlock()
		}
	}
}

func headersFromCDP(h network.Headers) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		if s, ok := v.(string); ok {
			out.Set(k, s)
		}
	}
	return out
}

// StartCapture clears the navigation record ahead of the next Open call.
func (s *Session) StartCapture() error {
	if s.closed {
		return crawler.ErrOpaqueCapabilityConsumed
	}
	s.mu.Lock()
	s.lastNav = crawler.NavigationRecord{}
	s.hasNav = false
	s.mu.Unlock()
	return nil
}

// Open navigates to rawURL, bounded by the session's configured page-load
// timeout.
func (s *Session) Open(ctx context.Context, rawURL string) error {
	if s.closed {
		return crawler.ErrOpaqueCapabilityConsumed
	}
	timeout := s.cfg.PageTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	navCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(rawURL), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("browser: opening %s: %w", rawURL, err)
	}
	return nil
}

// CurrentURL returns the tab's committed URL.
func (s *Session) CurrentURL() (string, error) {
	if s.closed {
		return "", crawler.ErrOpaqueCapabilityConsumed
	}
	var url string
	if err := chromedp.Run(s.ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("browser: reading current URL: %w", err)
	}
	return url, nil
}

// Cookies returns the cookies visible to the current page.
func (s *Session) Cookies() ([]crawler.Cookie, error) {
	if s.closed {
		return nil, crawler.ErrOpaqueCapabilityConsumed
	}
	var cdpCookies []*network.Cookie
	if err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cdpCookies, err = network.GetCookies().Do(ctx)
		return err
	})); err != nil {
		return nil, fmt.Errorf("browser: reading cookies: %w", err)
	}
	out := make([]crawler.Cookie, len(cdpCookies))
	for i, c := range cdpCookies {
		out[i] = crawler.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			Expires:  time.Unix(int64(c.Expires), 0),
		}
	}
	return out, nil
}

// LastNavigation reports the navigation record captured since the last
// StartCapture call.
func (s *Session) LastNavigation() (crawler.NavigationRecord, bool, error) {
	if s.closed {
		return crawler.NavigationRecord{}, false, crawler.ErrOpaqueCapabilityConsumed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastNav, s.hasNav, nil
}

// Eval runs expression in the page and decodes its result into out.
func (s *Session) Eval(ctx context.Context, expression string, out any) error {
	if s.closed {
		return crawler.ErrOpaqueCapabilityConsumed
	}
	return chromedp.Run(ctx, chromedp.Evaluate(expression, out))
}

// Close releases the tab and its allocator.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	s.allocCancel()
	return nil
}
