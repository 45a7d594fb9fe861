package gmail

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCredentials(t *testing.T) {
	c, err := ParseCredentials([]byte(`{
		"token": "at",
		"refresh_token": "rt",
		"token_uri": "https://oauth2.googleapis.com/token",
		"client_id": "cid",
		"client_secret": "secret",
		"scopes": ["https://www.googleapis.com/auth/gmail.readonly"]
	}`))
	if err != nil {
		t.Fatalf("ParseCredentials: %v", err)
	}
	if c.Token != "at" || c.RefreshToken != "rt" || c.ClientID != "cid" || len(c.Scopes) != 1 {
		t.Fatalf("got %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseCredentials_IgnoresLoginExtras(t *testing.T) {
	c, err := ParseCredentials([]byte(`{
		"token": "at",
		"refresh_token": "rt",
		"id_token": "eyJhbGciOiJSUzI1NiJ9.e30.sig",
		"expiry": "2024-01-31T12:00:00Z",
		"client_id": "cid",
		"client_secret": "secret"
	}`))
	if err != nil {
		t.Fatalf("ParseCredentials: %v", err)
	}
	if c.Token != "at" || c.RefreshToken != "rt" {
		t.Fatalf("got %+v", c)
	}
}

func TestParseCredentials_Rejects(t *testing.T) {
	for _, in := range []string{
		`not json`,
		`{"scopes": "not-a-list"}`,
	} {
		if _, err := ParseCredentials([]byte(in)); !errors.Is(err, ErrAuth) {
			t.Errorf("ParseCredentials(%s) err = %v; want ErrAuth", in, err)
		}
	}
}

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		ok    bool
	}{
		{"empty", Credentials{}, false},
		{"access token only", Credentials{Token: "at"}, true},
		{"refresh without client", Credentials{RefreshToken: "rt"}, false},
		{"refresh with client", Credentials{RefreshToken: "rt", ClientID: "id", ClientSecret: "s"}, true},
	}
	for _, tc := range tests {
		err := tc.creds.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrAuth) {
			t.Errorf("%s: err = %v; want ErrAuth", tc.name, err)
		}
	}
}

func TestSaveLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	want := Credentials{Token: "at", RefreshToken: "rt", ClientID: "cid", ClientSecret: "s", Scopes: Scopes}
	if err := SaveCredentials(path, want); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o", perm)
	}
	got, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if got.Token != want.Token || got.RefreshToken != want.RefreshToken || got.ClientSecret != want.ClientSecret || len(got.Scopes) != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadCredentials_Missing(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v; want ErrAuth", err)
	}
}
