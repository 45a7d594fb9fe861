package gmail

import (
	"lawdesk/internal/logger"

	"go.uber.org/zap"
	gmailv1 "google.golang.org/api/gmail/v1"
)

// htmlToText is swapped in tests to observe whether the HTML fallback ran.
var htmlToText = HTMLToText

// ResolveBody returns a single display string for msg. The first strategy
// that applies wins:
//
//  1. a decodable top-level payload body (single-part messages),
//  2. the text/plain parts,
//  3. the text/html parts converted to text,
//  4. the provider snippet, verbatim.
func ResolveBody(msg *gmailv1.Message) string {
	if msg == nil {
		return ""
	}
	r := &bodyResolver{msg: msg}
	for _, strategy := range []func() (string, bool){
		r.topLevel,
		r.plainText,
		r.htmlText,
		r.snippet,
	} {
		if text, ok := strategy(); ok {
			return text
		}
	}
	return ""
}

// bodyResolver walks the part tree at most once per message.
type bodyResolver struct {
	msg  *gmailv1.Message
	walk *Walk
}

func (r *bodyResolver) parts() Walk {
	if r.walk == nil {
		var w Walk
		if r.msg.Payload != nil {
			w = WalkParts(r.msg.Payload.Parts)
		}
		r.walk = &w
	}
	return *r.walk
}

func (r *bodyResolver) topLevel() (string, bool) {
	p := r.msg.Payload
	if p == nil || p.Body == nil || p.Body.Data == "" {
		return "", false
	}
	text, err := decodePayload(p.Body.Data)
	if err != nil {
		logger.Logger.Debug("top-level body undecodable, walking parts",
			zap.String("gmailId", r.msg.Id),
			zap.Error(err),
		)
		return "", false
	}
	return text, true
}

func (r *bodyResolver) plainText() (string, bool) {
	w := r.parts()
	return w.Plain, w.Plain != ""
}

func (r *bodyResolver) htmlText() (string, bool) {
	w := r.parts()
	if w.HTML == "" {
		return "", false
	}
	return htmlToText(w.HTML), true
}

func (r *bodyResolver) snippet() (string, bool) {
	return r.msg.Snippet, true
}
