package gmail

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptRe     = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleRe      = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	lineBreakRe  = regexp.MustCompile(`(?i)<\s*(br|br/|br\s*/)\s*>`)
	paraCloseRe  = regexp.MustCompile(`(?i)</p\s*>`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n+`)
	spacesRe     = regexp.MustCompile(`[ \t]+`)
)

// HTMLToText is a lossy HTML to plain text conversion for display. It is
// not a parser: malformed markup yields odd text, never a panic.
//
// Entities are decoded first, so escaped markup in the source is stripped
// along with real tags.
func HTMLToText(s string) string {
	text := html.UnescapeString(s)
	text = scriptRe.ReplaceAllString(text, "")
	text = styleRe.ReplaceAllString(text, "")
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = paraCloseRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
