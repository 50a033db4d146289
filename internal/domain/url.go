package domain

import (
	"net/url"
	"strings"
)

// HostOf returns the lower-cased host of rawURL without a leading "www.".
func HostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// HostMatchesDomain reports whether host equals domain or is a subdomain of it.
func HostMatchesDomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	domain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "www."))
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// InAllowList reports whether rawURL is served from one of the domains.
func InAllowList(rawURL string, domains []string) bool {
	host := HostOf(rawURL)
	for _, d := range domains {
		if HostMatchesDomain(host, d) {
			return true
		}
	}
	return false
}

// NormalizeURL strips query, fragment and trailing slash and lower-cases the
// result so that the same article under tracking parameters compares equal.
func NormalizeURL(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if i := strings.Index(s, "#"); i > 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "?"); i > 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
	s = strings.TrimPrefix(s, "www.")
	return strings.ToLower(s)
}
