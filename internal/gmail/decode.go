package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var base64URLReplacer = strings.NewReplacer("-", "+", "_", "/")

// decodeBase64URL decodes Gmail's base64url payloads. Gmail usually omits
// padding, so it is re-added before decoding with the standard alphabet.
func decodeBase64URL(data string) ([]byte, error) {
	if data == "" {
		return nil, nil
	}
	s := base64URLReplacer.Replace(data)
	if pad := len(s) % 4; pad != 0 {
		s += strings.Repeat("=", 4-pad)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64url: %w", ErrDecode, err)
	}
	return b, nil
}

// textDecoder turns raw part bytes into text, reporting false when the bytes
// are not in its encoding.
type textDecoder func([]byte) (string, bool)

// textDecoders are tried in order; the last one always succeeds.
var textDecoders = []textDecoder{decodeUTF8, decodeLatin1}

func decodeUTF8(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// decodeLatin1 maps one byte to one rune.
func decodeLatin1(b []byte) (string, bool) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError)), true
	}
	return string(out), true
}

func decodeText(b []byte) string {
	for _, dec := range textDecoders {
		if s, ok := dec(b); ok {
			return s
		}
	}
	return ""
}

// decodePayload decodes a part body's data field into text.
func decodePayload(data string) (string, error) {
	b, err := decodeBase64URL(data)
	if err != nil {
		return "", err
	}
	return decodeText(b), nil
}
