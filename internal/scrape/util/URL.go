package util

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// ResolveURL resolves ref against base; absolute refs pass through unchanged.
func ResolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if r.IsAbs() {
		return r.String()
	}
	b, err := url.Parse(strings.TrimSpace(base))
	if err != nil || b.Host == "" {
		return ""
	}
	return b.ResolveReference(r).String()
}

// ResolveImage picks the lazily-loaded source over the eager one, drops
// data: placeholders and resolves site-relative paths against base.
func ResolveImage(base, lazy, eager string) string {
	raw := strings.TrimSpace(lazy)
	if raw == "" {
		raw = strings.TrimSpace(eager)
	}
	if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
		return ""
	}
	return ResolveURL(base, raw)
}

var bgURLRe = regexp.MustCompile(`url\(\s*["']?([^"')]+)["']?\s*\)`)

// BackgroundImageURL extracts the url(...) of an inline background-image style.
func BackgroundImageURL(style string) string {
	if m := bgURLRe.FindStringSubmatch(style); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// CanonicalURL drops fragments and tracking params and sorts the query.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" || lk == "ref" {
			q.Del(k)
		}
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}
