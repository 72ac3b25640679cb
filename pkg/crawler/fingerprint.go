package crawler

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// fingerprint computes the dedup identity of a URL: scheme and host
// lowercased, empty path normalized to "/", fragment dropped, and query
// parameters sorted by (name, value) before hashing. The result is the
// lowercase hex SHA-256 of the normalized URL string.
func fingerprint(u *url.URL) string {
	normalized := *u
	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)
	if normalized.Path == "" {
		normalized.Path = "/"
	}
	normalized.Fragment = ""
	normalized.RawFragment = ""

	if normalized.RawQuery != "" {
		values := normalized.Query()
		var keys []string
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sorted := url.Values{}
		for _, k := range keys {
			vals := append([]string(nil), values[k]...)
			sort.Strings(vals)
			for _, v := range vals {
				sorted.Add(k, v)
			}
		}
		normalized.RawQuery = sorted.Encode()
	}

	sum := sha256.Sum256([]byte(normalized.String()))
	return hex.EncodeToString(sum[:])
}
