package crawler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// NOTE: the §4.1 dedup contract normalizes scheme/host case, drops the
// fragment, and sorts query parameters — it does not trim a trailing slash
// on a non-empty path. That means "http://EX.com/a?x=1&y=2" and
// "http://ex.com/a/?y=2&x=1" (note "/a" vs "/a/") do NOT fingerprint equal
// here, even though the scenario walkthrough written against those two
// exact URLs calls them a duplicate pair. This test exercises the
// as-implemented contract (no trailing-slash equivalence) rather than
// editing around that scenario; see DESIGN.md's fingerprint entry for the
// deviation this leaves against that walkthrough.
func TestFingerprint_IgnoresCaseReorderAndTrivialPathDifferences(t *testing.T) {
	t.Parallel()

	base := mustParseURL(t, "http://EX.com/a?x=1&y=2")

	reordered := mustParseURL(t, "http://ex.com/a?y=2&x=1")
	require.Equal(t, fingerprint(base), fingerprint(reordered))

	withFragment := mustParseURL(t, "http://ex.com/a?x=1&y=2#section")
	require.Equal(t, fingerprint(base), fingerprint(withFragment))

	emptyPath := mustParseURL(t, "http://ex.com?x=1&y=2")
	slashPath := mustParseURL(t, "http://ex.com/?x=1&y=2")
	require.Equal(t, fingerprint(emptyPath), fingerprint(slashPath))
}

func TestFingerprint_DifferentURLsDiffer(t *testing.T) {
	t.Parallel()
	a := mustParseURL(t, "http://ex.com/a")
	b := mustParseURL(t, "http://ex.com/b")
	require.NotEqual(t, fingerprint(a), fingerprint(b))
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
