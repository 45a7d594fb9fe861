package gmail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
)

// Scopes requested by Authorize. Ingest never modifies mail.
var Scopes = []string{gmailv1.GmailReadonlyScope}

// loopbackTimeout bounds the wait for the browser redirect before falling
// back to manual paste.
var loopbackTimeout = 120 * time.Second

// LoadClientConfig reads an OAuth client secrets file downloaded from the
// Google Cloud console.
func LoadClientConfig(path string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read client secrets at %s: %w", ErrAuth, path, err)
	}
	cfg, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse oauth config: %w", ErrAuth, err)
	}
	return cfg, nil
}

// Authorize runs the installed-app OAuth flow. It listens on a loopback
// port for the redirect; if that fails or times out it asks for the code
// (or the full redirect URL) on in. Prompts go to out.
func Authorize(ctx context.Context, cfg *oauth2.Config, in io.Reader, out io.Writer, open func(string) error) (Credentials, error) {
	tok, err := tokenFromLoopback(ctx, cfg, out, open)
	if err != nil && !errors.Is(err, errLoopbackUnavailable) {
		return Credentials{}, err
	}
	if tok == nil {
		tok, err = tokenFromPaste(ctx, cfg, in, out)
		if err != nil {
			return Credentials{}, err
		}
	}
	fmt.Fprintln(out, "Authentication successful.")
	return CredentialsFromToken(cfg, tok), nil
}

var errLoopbackUnavailable = errors.New("loopback redirect unavailable")

func tokenFromLoopback(ctx context.Context, cfg *oauth2.Config, out io.Writer, open func(string) error) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, errLoopbackUnavailable
	}
	port := ln.Addr().(*net.TCPAddr).Port
	redirect := fmt.Sprintf("http://127.0.0.1:%d/", port)
	oldRedirect := cfg.RedirectURL
	cfg.RedirectURL = redirect

	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           mux,
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Missing 'code' parameter", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authentication complete. You can close this window.")
		select {
		case codeCh <- code:
		default:
		}
	})
	go func() { _ = srv.Serve(ln) }()
	defer func() { _ = srv.Shutdown(context.Background()) }()

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintln(out, "A browser window will open. If it does not, copy this URL:")
	fmt.Fprintln(out, authURL)
	fmt.Fprintf(out, "Waiting for redirect on %s …\n", redirect)
	if open != nil {
		_ = open(authURL)
	}

	select {
	case <-ctx.Done():
		cfg.RedirectURL = oldRedirect
		return nil, ctx.Err()
	case code := <-codeCh:
		fmt.Fprintln(out, "Exchanging code for token…")
		// The redirect URL must match the one used for the auth request.
		tok, err := cfg.Exchange(ctx, strings.TrimSpace(code))
		cfg.RedirectURL = oldRedirect
		if err != nil {
			return nil, fmt.Errorf("%w: token exchange: %w", ErrAuth, err)
		}
		return tok, nil
	case <-time.After(loopbackTimeout):
		cfg.RedirectURL = oldRedirect
		fmt.Fprintln(out, "Timeout waiting for redirect; falling back to manual paste.")
		return nil, errLoopbackUnavailable
	}
}

func tokenFromPaste(ctx context.Context, cfg *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintln(out, "Open this URL in your browser to authorize lawdesk:")
	fmt.Fprintln(out, authURL)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Paste the AUTH CODE itself or the FULL redirect URL here, then press Enter.")
	fmt.Fprint(out, "> ")

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("%w: read auth code: %w", ErrAuth, err)
		}
		return nil, fmt.Errorf("%w: empty authorization code", ErrAuth)
	}
	code, err := parseAuthInput(sc.Text())
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "Exchanging code for token…")
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %w", ErrAuth, err)
	}
	return tok, nil
}

// parseAuthInput accepts either a bare authorization code or the redirect
// URL the browser landed on.
func parseAuthInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty authorization code", ErrAuth)
	}
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return input, nil
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("%w: parse redirect URL: %w", ErrAuth, err)
	}
	code := strings.TrimSpace(u.Query().Get("code"))
	if code == "" {
		return "", fmt.Errorf("%w: no 'code' parameter found in pasted URL", ErrAuth)
	}
	return code, nil
}
