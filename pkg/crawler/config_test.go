package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCrawlerConfiguration_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := NewCrawlerConfiguration()
	require.NoError(t, err)
	require.Equal(t, BreadthFirst, cfg.Strategy)
	require.True(t, cfg.FilterDuplicateRequests)
	require.False(t, cfg.FilterOffsiteRequests)
	require.Zero(t, cfg.MaxCrawlDepth)
	require.Equal(t, DelayFixed, cfg.DelayStrategy)
}

func TestNewCrawlerConfiguration_RejectsInvertedRandomDelayRange(t *testing.T) {
	t.Parallel()
	_, err := NewCrawlerConfiguration(WithRandomDelay(1000, 200))
	require.ErrorIs(t, err, ErrInvalidDelayRange)
}

func TestNewCrawlerConfiguration_RejectsEqualAdaptiveDelayBounds(t *testing.T) {
	t.Parallel()
	_, err := NewCrawlerConfiguration(WithAdaptiveDelay(500, 500))
	require.ErrorIs(t, err, ErrInvalidDelayRange)
}

func TestNewCrawlerConfiguration_RejectsNegativeMaxCrawlDepth(t *testing.T) {
	t.Parallel()
	_, err := NewCrawlerConfiguration(WithMaxCrawlDepth(-1))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidDelayRange)
}

func TestCrawlerConfiguration_IsAllowed(t *testing.T) {
	t.Parallel()
	allowed, err := NewCrawlDomain("example.com")
	require.NoError(t, err)
	other, err := NewCrawlDomain("other.test")
	require.NoError(t, err)

	noAllowList, err := NewCrawlerConfiguration()
	require.NoError(t, err)
	require.True(t, noAllowList.IsAllowed(other))

	withAllowList, err := NewCrawlerConfiguration(WithAllowedCrawlDomains(allowed))
	require.NoError(t, err)
	require.True(t, withAllowList.IsAllowed(allowed))
	require.False(t, withAllowList.IsAllowed(other))
}
