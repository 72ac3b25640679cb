package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func eventFor(t *testing.T, rawURL string) Event {
	t.Helper()
	req, err := NewCrawlRequest(rawURL, 0, nil)
	require.NoError(t, err)
	return Event{Kind: ResponseSuccess, Candidate: CrawlCandidate{Request: req, Depth: 1}}
}

func TestCallbackRegistry_InvokesAllMatchingHandlersInOrder(t *testing.T) {
	t.Parallel()
	r := NewCallbackRegistry()

	var order []string
	require.NoError(t, r.Register(ResponseSuccess, `https://a\.com/.*`, func(Event) error {
		order = append(order, "h1")
		return nil
	}))
	require.NoError(t, r.Register(ResponseSuccess, `https://a\.com/x.*`, func(Event) error {
		order = append(order, "h2")
		return nil
	}))
	defaultCalled := false
	r.RegisterDefault(ResponseSuccess, func(Event) error {
		defaultCalled = true
		return nil
	})

	dispatched, err := r.Dispatch(eventFor(t, "https://a.com/xyz"))
	require.NoError(t, err)
	require.True(t, dispatched)
	require.Equal(t, []string{"h1", "h2"}, order)
	require.False(t, defaultCalled, "default must not fire when a pattern matched")
}

func TestCallbackRegistry_FallsBackToDefaultWhenNothingMatches(t *testing.T) {
	t.Parallel()
	r := NewCallbackRegistry()

	matchedCalled := false
	require.NoError(t, r.Register(ResponseSuccess, `https://a\.com/.*`, func(Event) error {
		matchedCalled = true
		return nil
	}))
	defaultCalled := false
	r.RegisterDefault(ResponseSuccess, func(Event) error {
		defaultCalled = true
		return nil
	})

	dispatched, err := r.Dispatch(eventFor(t, "https://b.com/"))
	require.NoError(t, err)
	require.True(t, dispatched)
	require.False(t, matchedCalled)
	require.True(t, defaultCalled)
}

func TestCallbackRegistry_NoMatchAndNoDefaultIsNotDispatched(t *testing.T) {
	t.Parallel()
	r := NewCallbackRegistry()
	require.NoError(t, r.Register(ResponseSuccess, `https://a\.com/.*`, func(Event) error { return nil }))

	dispatched, err := r.Dispatch(eventFor(t, "https://b.com/"))
	require.NoError(t, err)
	require.False(t, dispatched)
}

func TestCallbackRegistry_StopsOnFirstHandlerError(t *testing.T) {
	t.Parallel()
	r := NewCallbackRegistry()

	sentinel := errTest
	secondCalled := false
	require.NoError(t, r.Register(ResponseSuccess, `https://a\.com/.*`, func(Event) error {
		return sentinel
	}))
	require.NoError(t, r.Register(ResponseSuccess, `https://a\.com/.*`, func(Event) error {
		secondCalled = true
		return nil
	}))

	_, err := r.Dispatch(eventFor(t, "https://a.com/x"))
	require.ErrorIs(t, err, sentinel)
	require.False(t, secondCalled)
}
