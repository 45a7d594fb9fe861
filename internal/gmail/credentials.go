package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Credentials are the OAuth token fields handed over by the login flow.
type Credentials struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
}

// ParseCredentials decodes a credential mapping. Keys it does not use, such
// as id_token and expiry from the login flow, are ignored.
func ParseCredentials(b []byte) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, fmt.Errorf("%w: parse credentials: %w", ErrAuth, err)
	}
	return c, nil
}

// Validate reports whether a token source can be built from c.
func (c Credentials) Validate() error {
	if c.Token == "" && c.RefreshToken == "" {
		return fmt.Errorf("%w: token or refresh_token is required", ErrAuth)
	}
	if c.RefreshToken != "" && (c.ClientID == "" || c.ClientSecret == "") {
		return fmt.Errorf("%w: client_id and client_secret are required to refresh", ErrAuth)
	}
	return nil
}

func (c Credentials) oauthConfig() *oauth2.Config {
	tokenURL := c.TokenURI
	if tokenURL == "" {
		tokenURL = google.Endpoint.TokenURL
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  google.Endpoint.AuthURL,
			TokenURL: tokenURL,
		},
		Scopes: c.Scopes,
	}
}

// TokenSource returns a refreshing token source. An empty access token is
// treated as expired and refreshed on first use.
func (c Credentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	tok := &oauth2.Token{
		AccessToken:  c.Token,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
	}
	return c.oauthConfig().TokenSource(ctx, tok), nil
}

// CredentialsFromToken captures a freshly exchanged token together with the
// client it was issued to.
func CredentialsFromToken(cfg *oauth2.Config, tok *oauth2.Token) Credentials {
	return Credentials{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     cfg.Endpoint.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       cfg.Scopes,
	}
}

// NewService builds a Gmail service authorized by creds. Extra options are
// applied after the token source (tests point the endpoint at a fake).
func NewService(ctx context.Context, creds Credentials, opts ...option.ClientOption) (*gmailv1.Service, error) {
	ts, err := creds.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := gmailv1.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("%w: create gmail service: %w", ErrAuth, err)
	}
	return svc, nil
}

// LoadCredentials reads credentials saved by SaveCredentials.
func LoadCredentials(path string) (Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("%w: no credentials at %s, run `lawdesk auth`", ErrAuth, path)
		}
		return Credentials{}, fmt.Errorf("read credentials at %s: %w", path, err)
	}
	return ParseCredentials(b)
}

// SaveCredentials writes creds atomically with owner-only permissions.
func SaveCredentials(path string, creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(creds); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
