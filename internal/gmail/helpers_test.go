package gmail

import (
	"encoding/base64"

	gmailv1 "google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func leaf(mime, text string) *gmailv1.MessagePart {
	return &gmailv1.MessagePart{
		MimeType: mime,
		Body:     &gmailv1.MessagePartBody{Data: b64(text), Size: int64(len(text))},
	}
}

func multipart(mime string, parts ...*gmailv1.MessagePart) *gmailv1.MessagePart {
	return &gmailv1.MessagePart{
		MimeType: mime,
		Body:     &gmailv1.MessagePartBody{},
		Parts:    parts,
	}
}

func header(name, value string) *gmailv1.MessagePartHeader {
	return &gmailv1.MessagePartHeader{Name: name, Value: value}
}
