package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lawdesk/internal/config"
	"lawdesk/internal/gmail"
	"lawdesk/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	cmd := NewRootCmd()
	want := map[string]bool{"auth": false, "fetch": false, "browse": false, "ocr": false, "serve": false}
	for _, c := range cmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestFetchRequiresSenderAndAfter(t *testing.T) {
	_, err := execute(t, "fetch", "--after", "2024-01-01")
	if err == nil || !strings.Contains(err.Error(), "sender") {
		t.Fatalf("err = %v", err)
	}
}

func TestFetchCaseRequiresSave(t *testing.T) {
	_, err := execute(t, "fetch", "--sender", "a@b.example", "--after", "2024-01-01", "--case", "c1")
	if err == nil || !strings.Contains(err.Error(), "--save") {
		t.Fatalf("err = %v", err)
	}
}

func TestFetchWithoutCredentials(t *testing.T) {
	_, err := execute(t, "fetch", "--sender", "a@b.example", "--after", "2024-01-01")
	if err == nil || !strings.Contains(err.Error(), "lawdesk auth") {
		t.Fatalf("err = %v", err)
	}
}

func TestOCRRequiresFile(t *testing.T) {
	if _, err := execute(t, "ocr"); err == nil {
		t.Fatal("expected error without file argument")
	}
}

func TestIngestOptionsLimitOverride(t *testing.T) {
	cfg := config.DefaultConfig(t.TempDir())
	if got := len(ingestOptions(cfg, 0)); got != 2 {
		t.Fatalf("len = %d", got)
	}
	if got := len(ingestOptions(cfg, 10)); got != 3 {
		t.Fatalf("len = %d", got)
	}
}

func TestFetchSavePrintsBatchAndStoreTotal(t *testing.T) {
	dir := t.TempDir()
	credsPath := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(credsPath, []byte(`{"token": "at"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LAWDESK_AUTH_CREDENTIALS", credsPath)
	t.Setenv("LAWDESK_STORE_PATH", filepath.Join(dir, "lawdesk.db"))

	var gotAfter string
	orig := fetchEmails
	t.Cleanup(func() { fetchEmails = orig })
	fetchEmails = func(_ context.Context, _ gmail.Credentials, _, startDate string, _ ...gmail.Option) (model.EmailBatch, error) {
		gotAfter = startDate
		return model.EmailBatch{Emails: []model.NormalizedEmail{
			{GmailID: "m1", Subject: "Motion", Sender: "oc@firm.example", BodyText: "filed"},
		}}, nil
	}

	t.Setenv("HOME", dir)
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"fetch", "--sender", "oc@firm.example", "--after", "2024-01-31", "--save"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v (stderr %q)", err, stderr.String())
	}

	if gotAfter != "2024-01-31" {
		t.Errorf("start date = %q; want it unchanged", gotAfter)
	}
	var batch model.EmailBatch
	if err := json.Unmarshal(stdout.Bytes(), &batch); err != nil {
		t.Fatalf("stdout is not a JSON batch: %v\n%s", err, stdout.String())
	}
	if batch.Len() != 1 || batch.Emails[0].GmailID != "m1" {
		t.Errorf("batch = %+v", batch)
	}
	if !strings.Contains(stderr.String(), "Saved 1 emails") || !strings.Contains(stderr.String(), "(1 stored)") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
