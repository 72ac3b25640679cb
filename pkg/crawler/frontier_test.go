package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrontier_DedupWithQueryReorder(t *testing.T) {
	t.Parallel()
	stats := &StatsCounter{}
	cfg, err := NewCrawlerConfiguration(crawler_testSeeds(t,
		"http://EX.com/a?x=1&y=2",
		"http://ex.com/a?y=2&x=1",
	)...)
	require.NoError(t, err)

	f := NewCrawlFrontier(cfg, stats)
	require.Equal(t, 1, f.Len())
	require.EqualValues(t, 1, stats.Snapshot().FilteredDuplicate)
}

func TestFrontier_OffsiteRejection(t *testing.T) {
	t.Parallel()
	stats := &StatsCounter{}
	allowed, err := NewCrawlDomain("example.com")
	require.NoError(t, err)

	seeds := crawler_testSeeds(t, "https://blog.example.com/p", "https://other.test/p")
	cfg, err := NewCrawlerConfiguration(append(seeds, WithFilterOffsiteRequests(true), WithAllowedCrawlDomains(allowed))...)
	require.NoError(t, err)

	f := NewCrawlFrontier(cfg, stats)
	require.Equal(t, 1, f.Len())
	require.EqualValues(t, 1, stats.Snapshot().FilteredOffsite)

	cand, err := f.NextCandidate()
	require.NoError(t, err)
	require.Equal(t, "https://blog.example.com/p", cand.Request.RawURL())
	require.Equal(t, 1, cand.Depth)
}

func TestFrontier_DepthLimit(t *testing.T) {
	t.Parallel()
	stats := &StatsCounter{}
	cfg, err := NewCrawlerConfiguration(
		append(crawler_testSeeds(t, "https://s.com/"), WithMaxCrawlDepth(3))...,
	)
	require.NoError(t, err)

	f := NewCrawlFrontier(cfg, stats)

	seed, err := f.NextCandidate()
	require.NoError(t, err)
	require.Equal(t, 1, seed.Depth)

	reqA, err := NewCrawlRequest("https://s.com/a", 0, nil)
	require.NoError(t, err)
	f.FeedRequest(reqA, false)

	a, err := f.NextCandidate()
	require.NoError(t, err)
	require.Equal(t, 2, a.Depth)

	reqAB, err := NewCrawlRequest("https://s.com/a/b", 0, nil)
	require.NoError(t, err)
	f.FeedRequest(reqAB, false)

	ab, err := f.NextCandidate()
	require.NoError(t, err)
	require.Equal(t, 3, ab.Depth)

	reqABC, err := NewCrawlRequest("https://s.com/a/b/c", 0, nil)
	require.NoError(t, err)
	f.FeedRequest(reqABC, false)

	require.Equal(t, 0, f.Len())
	require.EqualValues(t, 1, stats.Snapshot().FilteredDepthExceeded)
}

func TestFrontier_BreadthFirstOrdersByDepthThenPriority(t *testing.T) {
	t.Parallel()
	stats := &StatsCounter{}
	cfg, err := NewCrawlerConfiguration(WithStrategy(BreadthFirst), WithFilterDuplicateRequests(false))
	require.NoError(t, err)
	f := NewCrawlFrontier(cfg, stats)

	low, _ := NewCrawlRequest("https://s.com/low", 1, nil)
	high, _ := NewCrawlRequest("https://s.com/high", 5, nil)
	f.FeedRequest(low, true)
	f.FeedRequest(high, true)

	// Pop the depth-1 high-priority seed first and use it as the referer
	// for a depth-2 child, admitted before the remaining depth-1 seed.
	first, err := f.NextCandidate()
	require.NoError(t, err)
	require.Equal(t, 1, first.Depth)
	require.Equal(t, 5, first.Request.Priority())

	deep, _ := NewCrawlRequest("https://s.com/deep", 9, nil)
	f.FeedRequest(deep, false)

	second, err := f.NextCandidate()
	require.NoError(t, err)
	require.Equal(t, 1, second.Depth, "remaining depth-1 seed must be dequeued before the depth-2 child despite lower priority")
	require.Equal(t, 1, second.Request.Priority())

	third, err := f.NextCandidate()
	require.NoError(t, err)
	require.Equal(t, 2, third.Depth)
}

// crawler_testSeeds is a test helper building WithCrawlSeeds from raw URLs.
func crawler_testSeeds(t *testing.T, urls ...string) []ConfigOption {
	t.Helper()
	seeds := make([]CrawlRequest, 0, len(urls))
	for _, u := range urls {
		req, err := NewCrawlRequest(u, 0, nil)
		require.NoError(t, err)
		seeds = append(seeds, req)
	}
	return []ConfigOption{WithCrawlSeeds(seeds...)}
}
