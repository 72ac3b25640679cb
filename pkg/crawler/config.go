package crawler

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Strategy selects the frontier's traversal order.
type Strategy string

const (
	BreadthFirst Strategy = "BREADTH_FIRST"
	DepthFirst   Strategy = "DEPTH_FIRST"
)

// DelayStrategyKind selects the DelayController variant.
type DelayStrategyKind string

const (
	DelayFixed    DelayStrategyKind = "FIXED"
	DelayRandom   DelayStrategyKind = "RANDOM"
	DelayAdaptive DelayStrategyKind = "ADAPTIVE"
)

var configValidator = validator.New()

// CrawlerConfiguration is immutable once built by NewCrawlerConfiguration.
// It is serializable and restored verbatim as part of a session snapshot.
type CrawlerConfiguration struct {
	AllowedCrawlDomains     []CrawlDomain  `validate:"-"`
	CrawlSeeds              []CrawlRequest `validate:"-"`
	Strategy                Strategy       `validate:"oneof=BREADTH_FIRST DEPTH_FIRST"`
	FilterDuplicateRequests bool
	FilterOffsiteRequests   bool
	MaxCrawlDepth           int               `validate:"gte=0"`
	DelayStrategy           DelayStrategyKind `validate:"oneof=FIXED RANDOM ADAPTIVE"`
	FixedDelayMs            int               `validate:"gte=0"`
	MinDelayMs              int               `validate:"gte=0"`
	MaxDelayMs              int               `validate:"gte=0"`
}

// ConfigOption mutates a CrawlerConfiguration during construction.
type ConfigOption func(*CrawlerConfiguration)

// WithAllowedCrawlDomains sets the offsite allow-list. An empty list means
// no allow-list enforcement.
func WithAllowedCrawlDomains(domains ...CrawlDomain) ConfigOption {
	return func(c *CrawlerConfiguration) { c.AllowedCrawlDomains = domains }
}

// WithCrawlSeeds sets the initial requests fed to the frontier on a fresh
// (non-resumed) session start.
func WithCrawlSeeds(seeds ...CrawlRequest) ConfigOption {
	return func(c *CrawlerConfiguration) { c.CrawlSeeds = seeds }
}

// WithStrategy sets the frontier traversal strategy.
func WithStrategy(s Strategy) ConfigOption {
	return func(c *CrawlerConfiguration) { c.Strategy = s }
}

// WithFilterDuplicateRequests toggles dedup filtering (default true).
func WithFilterDuplicateRequests(enabled bool) ConfigOption {
	return func(c *CrawlerConfiguration) { c.FilterDuplicateRequests = enabled }
}

// WithFilterOffsiteRequests toggles offsite filtering (default false).
func WithFilterOffsiteRequests(enabled bool) ConfigOption {
	return func(c *CrawlerConfiguration) { c.FilterOffsiteRequests = enabled }
}

// WithMaxCrawlDepth sets the depth ceiling; 0 means unbounded.
func WithMaxCrawlDepth(depth int) ConfigOption {
	return func(c *CrawlerConfiguration) { c.MaxCrawlDepth = depth }
}

// WithFixedDelay configures the FIXED delay strategy.
func WithFixedDelay(ms int) ConfigOption {
	return func(c *CrawlerConfiguration) {
		c.DelayStrategy = DelayFixed
		c.FixedDelayMs = ms
	}
}

// WithRandomDelay configures the RANDOM delay strategy over [minMs, maxMs].
func WithRandomDelay(minMs, maxMs int) ConfigOption {
	return func(c *CrawlerConfiguration) {
		c.DelayStrategy = DelayRandom
		c.MinDelayMs = minMs
		c.MaxDelayMs = maxMs
	}
}

// WithAdaptiveDelay configures the ADAPTIVE delay strategy clamped to
// [minMs, maxMs].
func WithAdaptiveDelay(minMs, maxMs int) ConfigOption {
	return func(c *CrawlerConfiguration) {
		c.DelayStrategy = DelayAdaptive
		c.MinDelayMs = minMs
		c.MaxDelayMs = maxMs
	}
}

// NewCrawlerConfiguration builds and validates a CrawlerConfiguration.
// Defaults: BREADTH_FIRST strategy, dedup filtering on, offsite filtering
// off, unbounded depth, FIXED delay of 0ms.
func NewCrawlerConfiguration(opts ...ConfigOption) (CrawlerConfiguration, error) {
	cfg := CrawlerConfiguration{
		Strategy:                BreadthFirst,
		FilterDuplicateRequests: true,
		FilterOffsiteRequests:   false,
		MaxCrawlDepth:           0,
		DelayStrategy:           DelayFixed,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := configValidator.Struct(cfg); err != nil {
		return CrawlerConfiguration{}, fmt.Errorf("crawler: invalid configuration: %w", err)
	}

	if (cfg.DelayStrategy == DelayRandom || cfg.DelayStrategy == DelayAdaptive) && cfg.MinDelayMs >= cfg.MaxDelayMs {
		return CrawlerConfiguration{}, fmt.Errorf("%w: minDelayMs (%d) must be < maxDelayMs (%d)",
			ErrInvalidDelayRange, cfg.MinDelayMs, cfg.MaxDelayMs)
	}

	return cfg, nil
}

// IsAllowed reports whether domain passes the offsite allow-list. An empty
// allow-list always passes.
func (c CrawlerConfiguration) IsAllowed(domain CrawlDomain) bool {
	if len(c.AllowedCrawlDomains) == 0 {
		return true
	}
	for _, allowed := range c.AllowedCrawlDomains {
		if allowed.Contains(domain) {
			return true
		}
	}
	return false
}
