package gmail

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// MessageURL is the Gmail web link for a message id.
func MessageURL(id string) string {
	return "https://mail.google.com/mail/u/0/#inbox/" + url.PathEscape(id)
}

// OpenBrowser opens an http(s) URL in the user's default browser.
func OpenBrowser(target string) error {
	lower := strings.ToLower(target)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return fmt.Errorf("refusing to open non-HTTP URL: %s", target)
	}

	var cmd string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{target}
	case "linux":
		cmd = "xdg-open"
		args = []string{target}
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", target}
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	return exec.Command(cmd, args...).Start()
}
