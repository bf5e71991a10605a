package rank

import (
	"net/url"
	"sort"
	"strings"

	"github.com/askweb/askweb/internal/search"
)

// Merge combines results from multiple queries, canonicalizes URLs, trims
// obvious tracking parameters, and de-duplicates exact URLs. The first
// occurrence of a URL wins, so provider order is preserved for duplicates.
func Merge(groups [][]search.Result) []search.Result {
	seen := map[string]struct{}{}
	out := make([]search.Result, 0, 64)
	for _, g := range groups {
		for _, r := range g {
			if r.URL == "" {
				continue
			}
			u, err := url.Parse(r.URL)
			if err != nil {
				continue
			}
			canonicalize(u)
			key := u.String()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			r.URL = key
			out = append(out, r)
		}
	}
	return out
}

// TopK returns the k highest-scored results in descending score order.
// The sort is stable: results with equal scores keep their provider order.
// The input slice is not mutated.
func TopK(results []search.Result, k int) []search.Result {
	sorted := make([]search.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if k > 0 && len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

func canonicalize(u *url.URL) {
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) || (u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Hostname()
	}
	q := u.Query()
	for _, p := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"} {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
}
