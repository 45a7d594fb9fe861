package gmail

import (
	"testing"

	gmailv1 "google.golang.org/api/gmail/v1"
)

func countHTMLConversions(t *testing.T) *int {
	t.Helper()
	calls := 0
	orig := htmlToText
	htmlToText = func(s string) string {
		calls++
		return orig(s)
	}
	t.Cleanup(func() { htmlToText = orig })
	return &calls
}

func TestResolveBody_SinglePartShortcut(t *testing.T) {
	msg := &gmailv1.Message{
		Snippet: "snippet",
		Payload: &gmailv1.MessagePart{
			MimeType: "text/plain",
			Body:     &gmailv1.MessagePartBody{Data: b64("top level body")},
			Parts:    []*gmailv1.MessagePart{leaf("text/plain", "ignored")},
		},
	}
	if got := ResolveBody(msg); got != "top level body" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveBody_SinglePartLatin1(t *testing.T) {
	msg := &gmailv1.Message{
		Payload: &gmailv1.MessagePart{
			MimeType: "text/plain",
			Body:     &gmailv1.MessagePartBody{Data: b64("na\xefve")},
		},
	}
	if got := ResolveBody(msg); got != "naïve" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveBody_OnlyPlainLeaf(t *testing.T) {
	msg := &gmailv1.Message{
		Payload: multipart("multipart/mixed", leaf("text/plain", "\n  Dear counsel,\nsee attached.  \n")),
	}
	if got := ResolveBody(msg); got != "Dear counsel,\nsee attached." {
		t.Fatalf("got %q", got)
	}
}

func TestResolveBody_PrefersPlainOverHTML(t *testing.T) {
	calls := countHTMLConversions(t)
	msg := &gmailv1.Message{
		Payload: multipart("multipart/alternative",
			leaf("text/plain", "plain wins"),
			leaf("text/html", "<p>html loses</p>"),
		),
	}
	if got := ResolveBody(msg); got != "plain wins" {
		t.Fatalf("got %q", got)
	}
	if *calls != 0 {
		t.Fatalf("HTML conversion ran %d times", *calls)
	}
}

func TestResolveBody_HTMLFallback(t *testing.T) {
	calls := countHTMLConversions(t)
	msg := &gmailv1.Message{
		Snippet: "snippet",
		Payload: multipart("multipart/alternative",
			leaf("text/html", "<p>Hello</p><br>World"),
		),
	}
	if got := ResolveBody(msg); got != "Hello\n\nWorld" {
		t.Fatalf("got %q", got)
	}
	if *calls != 1 {
		t.Fatalf("HTML conversion ran %d times", *calls)
	}
}

func TestResolveBody_SnippetFallback(t *testing.T) {
	msg := &gmailv1.Message{
		Snippet: "Preview of the message",
		Payload: multipart("multipart/mixed", leaf("application/pdf", "%PDF-1.7")),
	}
	if got := ResolveBody(msg); got != "Preview of the message" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveBody_SnippetVerbatim(t *testing.T) {
	msg := &gmailv1.Message{Snippet: "  spaced  "}
	if got := ResolveBody(msg); got != "  spaced  " {
		t.Fatalf("got %q", got)
	}
}

func TestResolveBody_UndecodableTopLevelWalksParts(t *testing.T) {
	msg := &gmailv1.Message{
		Payload: &gmailv1.MessagePart{
			MimeType: "multipart/mixed",
			Body:     &gmailv1.MessagePartBody{Data: "@@@"},
			Parts:    []*gmailv1.MessagePart{leaf("text/plain", "from parts")},
		},
	}
	if got := ResolveBody(msg); got != "from parts" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveBody_Empty(t *testing.T) {
	if got := ResolveBody(nil); got != "" {
		t.Fatalf("nil message got %q", got)
	}
	if got := ResolveBody(&gmailv1.Message{}); got != "" {
		t.Fatalf("empty message got %q", got)
	}
}
