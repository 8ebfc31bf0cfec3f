package rules

import (
	"net/url"
	"strings"
)

// RootDomain returns the last two labels of host ("mail.bank.com" →
// "bank.com"). It does not know about multi-label public suffixes, so
// "bank.co.uk" and "evil.co.uk" share the root "co.uk". Hint output depends
// on this behaviour; do not swap in a public-suffix list.
func RootDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if host == "" {
		return ""
	}
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// LinkHost extracts the host a link actually points at, without port or
// user-info. Malformed links that url.Parse rejects fall back to a plain
// split on "://", "/", and "@".
func LinkHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}

	rest := raw
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	if i := strings.LastIndex(rest, ":"); i >= 0 {
		rest = rest[:i]
	}
	return strings.ToLower(rest)
}

// HasUserinfo reports whether a link embeds user-info before the real host,
// as in "https://bank.co.uk@evil.com/login".
func HasUserinfo(raw string) bool {
	if u, err := url.Parse(strings.TrimSpace(raw)); err == nil && u.Host != "" {
		return u.User != nil
	}
	rest := raw
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return strings.Contains(rest, "@")
}
