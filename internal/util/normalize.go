package util

import (
	"net/mail"
	"strings"
)

// NormalizeSender reduces a From header to a lookup key for stored email:
// the bare address, lowercased, with any +tag dropped from the local part.
// "Clerk <Filings+Court@Example.COM>" becomes "filings@example.com".
// Dots in the local part are kept. Returns "" when no address parses.
func NormalizeSender(from string) string {
	addr := parseFirstAddress(from)
	if addr == "" {
		return ""
	}
	addr = strings.ToLower(addr)
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return addr
	}
	local, domain := addr[:at], addr[at+1:]
	if plus := strings.IndexByte(local, '+'); plus >= 0 {
		local = local[:plus]
	}
	return local + "@" + domain
}

// parseFirstAddress returns the first address that parses from a header
// that may hold a comma separated list.
func parseFirstAddress(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if a, err := mail.ParseAddress(header); err == nil {
		return strings.TrimSpace(a.Address)
	}
	for _, p := range strings.Split(header, ",") {
		if a, err := mail.ParseAddress(strings.TrimSpace(p)); err == nil {
			return strings.TrimSpace(a.Address)
		}
	}
	return ""
}
