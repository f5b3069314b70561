// Package netutil normalizes client network metadata before it reaches
// login logs or rate-limit keys.
package netutil

import (
	"net/netip"
	"strings"
	"unicode/utf8"
)

// MaxUserAgentRunes caps the user agent string recorded with ceremony and
// session log lines.
const MaxUserAgentRunes = 512

// NormalizeIP reduces a proxy-supplied remote address to one canonical IP
// spelling. It accepts bare IPs, host:port pairs and bracketed IPv6 forms,
// stripping ports and zone identifiers. The per-IP rate limiter and the
// login logs must agree on a single spelling per client; "::1" and
// "[::1]:53422" are the same caller.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return canonical(ap.Addr())
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		return canonical(addr)
	}
	// Bracketed IPv6 where the port part is not numeric, e.g. "[::1]:junk".
	if strings.HasPrefix(raw, "[") {
		if end := strings.LastIndex(raw, "]"); end > 1 {
			if addr, err := netip.ParseAddr(raw[1:end]); err == nil {
				return canonical(addr)
			}
		}
	}
	// Same for IPv4 hosts with a malformed port section.
	if i := strings.LastIndex(raw, ":"); i > 0 {
		if addr, err := netip.ParseAddr(raw[:i]); err == nil {
			return canonical(addr)
		}
	}
	return raw, false
}

func canonical(addr netip.Addr) (string, bool) {
	addr = addr.WithZone("")
	if !addr.IsValid() {
		return "", false
	}
	return addr.String(), true
}

// TruncateUserAgent bounds a user agent to MaxUserAgentRunes whole runes.
func TruncateUserAgent(ua string) string {
	if utf8.RuneCountInString(ua) <= MaxUserAgentRunes {
		return ua
	}
	seen := 0
	for i := range ua {
		if seen == MaxUserAgentRunes {
			return ua[:i]
		}
		seen++
	}
	return ua
}
