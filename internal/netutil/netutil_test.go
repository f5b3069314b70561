package netutil

import (
	"strings"
	"testing"
)

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ipv4 host port", in: "198.51.100.7:61344", want: "198.51.100.7"},
		{name: "bare ipv4", in: "203.0.113.9", want: "203.0.113.9"},
		{name: "bracketed ipv6 port", in: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "bracketed ipv6 bad port", in: "[::1]:junk", want: "::1"},
		{name: "bare ipv6", in: "2001:db8::5", want: "2001:db8::5"},
		{name: "zone stripped", in: "fe80::1%eth0", want: "fe80::1"},
		{name: "surrounding space", in: "  203.0.113.9  ", want: "203.0.113.9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeIP(tc.in)
			if !ok {
				t.Fatalf("NormalizeIP(%q) not ok", tc.in)
			}
			if got != tc.want {
				t.Fatalf("NormalizeIP(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIPRejectsNonAddresses(t *testing.T) {
	for _, in := range []string{"", "not-an-ip", "example.com:443"} {
		if got, ok := NormalizeIP(in); ok {
			t.Fatalf("NormalizeIP(%q) = %q, want failure", in, got)
		}
	}
}

func TestTruncateUserAgent(t *testing.T) {
	short := "Mozilla/5.0"
	if got := TruncateUserAgent(short); got != short {
		t.Fatalf("short agent changed: %q", got)
	}

	long := strings.Repeat("ü", MaxUserAgentRunes+25)
	got := TruncateUserAgent(long)
	if n := len([]rune(got)); n != MaxUserAgentRunes {
		t.Fatalf("expected %d runes, got %d", MaxUserAgentRunes, n)
	}
	// Truncation never splits a multi-byte rune.
	if !strings.HasSuffix(got, "ü") {
		t.Fatalf("truncated agent ends mid-rune: %q", got)
	}
}
