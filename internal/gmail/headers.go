package gmail

import (
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"
)

// Defaults used when a header is missing from a message.
const (
	DefaultSubject   = "(no subject)"
	DefaultSender    = "(unknown sender)"
	DefaultRecipient = "(unknown recipient)"
	DefaultDate      = "(no date)"
)

// HeaderSet maps lowercased header names to values.
type HeaderSet map[string]string

// ExtractHeaders folds an ordered header list into a HeaderSet. Header names
// repeat in real mail; the last occurrence wins.
func ExtractHeaders(headers []*gmailv1.MessagePartHeader) HeaderSet {
	out := make(HeaderSet, len(headers))
	for _, h := range headers {
		if h == nil {
			continue
		}
		out[strings.ToLower(h.Name)] = h.Value
	}
	return out
}

// Get returns the value for name, or def when the header is absent. A header
// present with an empty value returns "".
func (h HeaderSet) Get(name, def string) string {
	if v, ok := h[strings.ToLower(name)]; ok {
		return v
	}
	return def
}
