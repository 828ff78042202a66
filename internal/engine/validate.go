package engine

import (
	"net/url"
	"strings"
)

// DefaultAllowedHosts lists the video hosts accepted when ALLOWED_HOSTS is unset.
// Subdomains (www., m., music.) are matched by suffix.
var DefaultAllowedHosts = []string{
	"youtube.com",
	"youtu.be",
	"youtube-nocookie.com",
}

// ValidateURL reports whether raw is an absolute http(s) URL whose host is
// covered by the allow-list. An empty allow-list admits any host, as does
// the entry "*".
func ValidateURL(raw string, allowed []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if a == "*" || host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}
