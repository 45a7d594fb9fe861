package gmail

import (
	"strings"

	"lawdesk/internal/logger"
	"lawdesk/internal/metrics"

	"go.uber.org/zap"
	gmailv1 "google.golang.org/api/gmail/v1"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
)

// Walk is the text collected from a message part tree.
type Walk struct {
	Plain string
	HTML  string
}

// WalkParts traverses the part tree pre-order and collects every decoded
// text/plain and text/html body. Chunks are joined with newlines in the order
// they were visited and each result is trimmed.
//
// A part whose payload cannot be decoded counts as empty text; the walk
// continues with its siblings and children.
func WalkParts(parts []*gmailv1.MessagePart) Walk {
	var plain, html []string
	for _, p := range parts {
		pl, ht := collectParts(p)
		plain = append(plain, pl...)
		html = append(html, ht...)
	}
	return Walk{
		Plain: strings.TrimSpace(strings.Join(plain, "\n")),
		HTML:  strings.TrimSpace(strings.Join(html, "\n")),
	}
}

// collectParts returns the plain and html chunks of p and its descendants.
// A part can carry both a body and sub-parts; both are visited.
func collectParts(p *gmailv1.MessagePart) (plain, html []string) {
	if p == nil {
		return nil, nil
	}
	if p.Body != nil && p.Body.Data != "" {
		text, err := decodePayload(p.Body.Data)
		if err != nil {
			metrics.PartDecodeFailures.Inc()
			logger.Logger.Debug("treating undecodable part as empty",
				zap.String("partId", p.PartId),
				zap.String("mimeType", p.MimeType),
				zap.Error(err),
			)
		}
		switch p.MimeType {
		case mimeTextPlain:
			plain = append(plain, text)
		case mimeTextHTML:
			html = append(html, text)
		}
	}
	for _, child := range p.Parts {
		cp, ch := collectParts(child)
		plain = append(plain, cp...)
		html = append(html, ch...)
	}
	return plain, html
}
