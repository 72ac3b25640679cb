// Package probe implements crawler.HttpProbe as a gocolly/colly collector:
// a lightweight HEAD/GET client that never follows redirects itself, backed
// by a retrying transport for transient failures.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/PuerkitoBio/rehttp"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/publicsuffix"

	"github.com/quietpath/crawlerctl/internal/logger"
	"github.com/quietpath/crawlerctl/pkg/crawler"
)

// Config configures a Probe.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultConfig returns sane defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:  "crawlerctl/1.0 (+politeness-aware probe)",
		Timeout:    15 * time.Second,
		MaxRetries: 3,
	}
}

// Probe is the colly-backed crawler.HttpProbe reference implementation.
type Probe struct {
	collector *colly.Collector
	jar       http.CookieJar
}

// New builds a Probe: robots.txt interpretation is explicitly left to the
// operator (IgnoreRobotsTxt), redirects are refused so Head/Get report the
// first response verbatim, and the transport retries transient failures
// with exponential backoff before the crawl loop ever sees them.
func New(cfg Config) (*Probe, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("probe: building cookie jar: %w", err)
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.SetRequestTimeout(cfg.Timeout)
	c.SetCookieJar(jar)
	c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	})

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	retryTransport := rehttp.NewTransport(
		http.DefaultTransport,
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(retries),
			rehttp.RetryAny(rehttp.RetryTemporaryErr(), rehttp.RetryStatuses(502, 503, 504)),
		),
		rehttp.ExpJitterDelay(100*time.Millisecond, 2*time.Second),
	)
	c.WithTransport(retryTransport)

	logger.Debug("probe created", "userAgent", cfg.UserAgent, "timeout", cfg.Timeout, "maxRetries", retries)

	return &Probe{collector: c, jar: jar}, nil
}

// probeResult is captured by the collector's synchronous callbacks.
type probeResult struct {
	resp crawler.Response
	body []byte
	err  error
}

func (p *Probe) do(ctx context.Context, method, rawURL string) (probeResult, error) {
	c := p.collector.Clone()

	var result probeResult
	c.OnResponse(func(r *colly.Response) {
		result.resp = crawler.Response{
			Status:   r.StatusCode,
			Header:   *r.Headers,
			FinalURL: rawURL,
		}
		result.body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		result.err = err
		if r != nil {
			result.resp = crawler.Response{Status: r.StatusCode, Header: *r.Headers, FinalURL: rawURL}
		}
	})

	if err := c.Request(method, rawURL, nil, nil, nil); err != nil {
		return probeResult{}, fmt.Errorf("probe: %s %s: %w", method, rawURL, err)
	}
	if result.err != nil {
		return probeResult{}, fmt.Errorf("probe: %s %s: %w", method, rawURL, result.err)
	}
	return result, nil
}

// Head issues a HEAD request, reporting the first response verbatim.
func (p *Probe) Head(ctx context.Context, rawURL string) (crawler.Response, error) {
	result, err := p.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return crawler.Response{}, err
	}
	return result.resp, nil
}

// Get issues a GET request, returning the response and its full body.
func (p *Probe) Get(ctx context.Context, rawURL string) (crawler.Response, []byte, error) {
	result, err := p.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return crawler.Response{}, nil, err
	}
	return result.resp, result.body, nil
}

// SyncCookie upserts a browser-observed cookie into the probe's jar, scoped
// to domain.
func (p *Probe) SyncCookie(domain string, cookie crawler.Cookie) error {
	u := &url.URL{Scheme: "https", Host: domain, Path: "/"}
	p.jar.SetCookies(u, []*http.Cookie{{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Domain:   cookie.Domain,
		Path:     cookie.Path,
		Expires:  cookie.Expires,
		Secure:   cookie.Secure,
		HttpOnly: cookie.HTTPOnly,
	}})
	return nil
}

// Close releases the probe's resources. colly's collector holds no
// long-lived handle beyond its http.Client, so this is a no-op kept for
// interface symmetry with BrowserSession.Close.
func (p *Probe) Close() error { return nil }

var _ io.Closer = (*Probe)(nil)
