package gmail

import "errors"

var (
	// ErrAuth marks failures to build credentials or an authorized client.
	ErrAuth = errors.New("gmail auth")
	// ErrProvider marks failed list or get calls against the Gmail API.
	ErrProvider = errors.New("gmail provider")
	// ErrDecode marks a MIME part payload that could not be decoded. The
	// walker recovers from it locally; it never aborts a batch.
	ErrDecode = errors.New("gmail decode")
)
