package gmail

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gmailv1 "google.golang.org/api/gmail/v1"
)

type fakeSource struct {
	ids      []string
	listErr  error
	messages map[string]*gmailv1.Message
	failIDs  map[string]bool

	gotSender, gotAfter string
	gotLimit            int64
	fetched             []string
}

func (f *fakeSource) ListMessageIDs(_ context.Context, sender, after string, limit int64) ([]string, error) {
	f.gotSender, f.gotAfter, f.gotLimit = sender, after, limit
	return f.ids, f.listErr
}

func (f *fakeSource) GetMessage(_ context.Context, id string) (*gmailv1.Message, error) {
	f.fetched = append(f.fetched, id)
	if f.failIDs[id] {
		return nil, fmt.Errorf("%w: get message %s: boom", ErrProvider, id)
	}
	return f.messages[id], nil
}

func testMessage(id, subject, body string) *gmailv1.Message {
	return &gmailv1.Message{
		Id:      id,
		Snippet: "snippet " + id,
		Payload: &gmailv1.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmailv1.MessagePartHeader{
				header("Subject", subject),
				header("From", "Opposing Counsel <oc@firm.example>"),
				header("To", "lawyer@example.com"),
				header("Date", "Mon, 2 Jan 2006 15:04:05 -0700"),
			},
			Parts: []*gmailv1.MessagePart{leaf("text/plain", body)},
		},
	}
}

func TestIngest_EmptyListingIsEmptyBatch(t *testing.T) {
	src := &fakeSource{}
	batch, err := Ingest(context.Background(), src, "oc@firm.example", "2024/01/01")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if batch.Emails == nil || len(batch.Emails) != 0 {
		t.Fatalf("want empty non-nil emails, got %#v", batch.Emails)
	}
	if len(src.fetched) != 0 {
		t.Fatalf("fetched %v", src.fetched)
	}
}

func TestIngest_PreservesListingOrder(t *testing.T) {
	src := &fakeSource{
		ids: []string{"m2", "m1", "m3"},
		messages: map[string]*gmailv1.Message{
			"m1": testMessage("m1", "One", "body one"),
			"m2": testMessage("m2", "Two", "  body two\n"),
			"m3": testMessage("m3", "Three", "body three"),
		},
	}
	batch, err := Ingest(context.Background(), src, "oc@firm.example", "2024/01/01", WithLimit(10))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if src.gotSender != "oc@firm.example" || src.gotAfter != "2024/01/01" || src.gotLimit != 10 {
		t.Fatalf("lister got sender=%q after=%q limit=%d", src.gotSender, src.gotAfter, src.gotLimit)
	}
	want := []struct{ id, subject, body string }{
		{"m2", "Two", "body two"},
		{"m1", "One", "body one"},
		{"m3", "Three", "body three"},
	}
	if len(batch.Emails) != len(want) {
		t.Fatalf("len = %d", len(batch.Emails))
	}
	for i, w := range want {
		e := batch.Emails[i]
		if e.GmailID != w.id || e.Subject != w.subject || e.BodyText != w.body {
			t.Fatalf("idx %d = %+v; want %+v", i, e, w)
		}
		if e.Sender != "Opposing Counsel <oc@firm.example>" || e.To != "lawyer@example.com" {
			t.Fatalf("idx %d headers = %+v", i, e)
		}
	}
}

func TestIngest_DefaultLimit(t *testing.T) {
	src := &fakeSource{}
	if _, err := Ingest(context.Background(), src, "a", "b"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if src.gotLimit != DefaultMaxResults {
		t.Fatalf("limit = %d", src.gotLimit)
	}
}

func TestIngest_ListErrorFails(t *testing.T) {
	src := &fakeSource{listErr: fmt.Errorf("%w: list messages: quota", ErrProvider)}
	batch, err := Ingest(context.Background(), src, "a", "b")
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("err = %v", err)
	}
	if batch.Emails != nil {
		t.Fatalf("want no batch, got %+v", batch)
	}
}

func TestIngest_FailFastAbortsWholeBatch(t *testing.T) {
	src := &fakeSource{
		ids: []string{"m1", "m2", "m3"},
		messages: map[string]*gmailv1.Message{
			"m1": testMessage("m1", "One", "a"),
			"m3": testMessage("m3", "Three", "c"),
		},
		failIDs: map[string]bool{"m2": true},
	}
	batch, err := Ingest(context.Background(), src, "a", "b")
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("err = %v", err)
	}
	if len(batch.Emails) != 0 {
		t.Fatalf("partial batch returned: %+v", batch.Emails)
	}
	if len(src.fetched) != 2 {
		t.Fatalf("fetched %v; want stop after m2", src.fetched)
	}
}

func TestIngest_SkipFailedReturnsRest(t *testing.T) {
	src := &fakeSource{
		ids: []string{"m1", "m2", "m3"},
		messages: map[string]*gmailv1.Message{
			"m1": testMessage("m1", "One", "a"),
			"m3": testMessage("m3", "Three", "c"),
		},
		failIDs: map[string]bool{"m2": true},
	}
	batch, err := Ingest(context.Background(), src, "a", "b", WithPolicy(SkipFailed))
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("err = %v", err)
	}
	if len(batch.Emails) != 2 || batch.Emails[0].GmailID != "m1" || batch.Emails[1].GmailID != "m3" {
		t.Fatalf("batch = %+v", batch.Emails)
	}
}

func TestIngest_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{ids: []string{"m1"}}
	if _, err := Ingest(ctx, src, "a", "b"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(src.fetched) != 0 {
		t.Fatalf("fetched %v", src.fetched)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	msg := &gmailv1.Message{Snippet: "  just a snippet  ", Payload: &gmailv1.MessagePart{MimeType: "text/plain"}}
	e := Normalize("abc", msg)
	if e.GmailID != "abc" {
		t.Fatalf("id = %q", e.GmailID)
	}
	if e.Subject != DefaultSubject || e.Sender != DefaultSender || e.To != DefaultRecipient || e.Date != DefaultDate {
		t.Fatalf("defaults not applied: %+v", e)
	}
	if e.BodyText != "just a snippet" {
		t.Fatalf("body = %q", e.BodyText)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", FailFast, false},
		{"fail-fast", FailFast, false},
		{" Skip-Failed ", SkipFailed, false},
		{"retry", FailFast, true},
	}
	for _, tc := range tests {
		got, err := ParsePolicy(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParsePolicy(%q) = %v, %v", tc.in, got, err)
		}
	}
	if FailFast.String() != "fail-fast" || SkipFailed.String() != "skip-failed" {
		t.Errorf("String() mismatch")
	}
}
