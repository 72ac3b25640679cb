package commands

import (
	"fmt"

	"github.com/quietpath/crawlerctl/pkg/crawler"
	"github.com/spf13/viper"
)

// yamlSeed is one entry under the "seeds" key of a crawl config file.
type yamlSeed struct {
	URL      string `mapstructure:"url"`
	Priority int    `mapstructure:"priority"`
}

// yamlConfig is the on-disk/viper shape of a crawl configuration; it is
// translated into a validated crawler.CrawlerConfiguration via
// buildCrawlerConfiguration.
type yamlConfig struct {
	AllowedDomains []string   `mapstructure:"allowed_domains"`
	Seeds          []yamlSeed `mapstructure:"seeds"`
	Strategy       string     `mapstructure:"strategy"`
	FilterDup      *bool      `mapstructure:"filter_duplicate_requests"`
	FilterOffsite  *bool      `mapstructure:"filter_offsite_requests"`
	MaxCrawlDepth  int        `mapstructure:"max_crawl_depth"`
	Delay          struct {
		Strategy string `mapstructure:"strategy"`
		FixedMs  int    `mapstructure:"fixed_ms"`
		MinMs    int    `mapstructure:"min_ms"`
		MaxMs    int    `mapstructure:"max_ms"`
	} `mapstructure:"delay"`
}

// loadCrawlerConfiguration unmarshals viper's active config into a
// validated crawler.CrawlerConfiguration.
func loadCrawlerConfiguration() (crawler.CrawlerConfiguration, error) {
	var raw yamlConfig
	if err := viper.Unmarshal(&raw); err != nil {
		return crawler.CrawlerConfiguration{}, fmt.Errorf("crawlerctl: parsing config: %w", err)
	}
	return buildCrawlerConfiguration(raw)
}

func buildCrawlerConfiguration(raw yamlConfig) (crawler.CrawlerConfiguration, error) {
	opts := []crawler.ConfigOption{}

	if len(raw.AllowedDomains) > 0 {
		domains := make([]crawler.CrawlDomain, 0, len(raw.AllowedDomains))
		for _, host := range raw.AllowedDomains {
			d, err := crawler.NewCrawlDomain(host)
			if err != nil {
				return crawler.CrawlerConfiguration{}, err
			}
			domains = append(domains, d)
		}
		opts = append(opts, crawler.WithAllowedCrawlDomains(domains...))
	}

	if len(raw.Seeds) > 0 {
		seeds := make([]crawler.CrawlRequest, 0, len(raw.Seeds))
		for _, s := range raw.Seeds {
			req, err := crawler.NewCrawlRequest(s.URL, s.Priority, nil)
			if err != nil {
				return crawler.CrawlerConfiguration{}, err
			}
			seeds = append(seeds, req)
		}
		opts = append(opts, crawler.WithCrawlSeeds(seeds...))
	}

	switch raw.Strategy {
	case "DEPTH_FIRST":
		opts = append(opts, crawler.WithStrategy(crawler.DepthFirst))
	case "", "BREADTH_FIRST":
		opts = append(opts, crawler.WithStrategy(crawler.BreadthFirst))
	default:
		return crawler.CrawlerConfiguration{}, fmt.Errorf("crawlerctl: unknown strategy %q", raw.Strategy)
	}

	if raw.FilterDup != nil {
		opts = append(opts, crawler.WithFilterDuplicateRequests(*raw.FilterDup))
	}
	if raw.FilterOffsite != nil {
		opts = append(opts, crawler.WithFilterOffsiteRequests(*raw.FilterOffsite))
	}
	if raw.MaxCrawlDepth > 0 {
		opts = append(opts, crawler.WithMaxCrawlDepth(raw.MaxCrawlDepth))
	}

	switch raw.Delay.Strategy {
	case "RANDOM":
		opts = append(opts, crawler.WithRandomDelay(raw.Delay.MinMs, raw.Delay.MaxMs))
	case "ADAPTIVE":
		opts = append(opts, crawler.WithAdaptiveDelay(raw.Delay.MinMs, raw.Delay.MaxMs))
	default:
		opts = append(opts, crawler.WithFixedDelay(raw.Delay.FixedMs))
	}

	return crawler.NewCrawlerConfiguration(opts...)
}
