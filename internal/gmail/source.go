package gmail

import (
	"context"
	"fmt"

	gmailv1 "google.golang.org/api/gmail/v1"
)

const (
	userID     = "me"
	inboxLabel = "INBOX"
)

// MessageSource is the provider side of the ingest pipeline.
type MessageSource interface {
	// ListMessageIDs returns at most limit inbox message ids from sender
	// received after the given date, in provider order. No match is an
	// empty result, not an error.
	ListMessageIDs(ctx context.Context, sender, after string, limit int64) ([]string, error)
	// GetMessage returns the full message resource: headers and MIME tree.
	GetMessage(ctx context.Context, id string) (*gmailv1.Message, error)
}

// Client is the MessageSource backed by the Gmail API.
type Client struct {
	svc *gmailv1.Service
}

func NewClient(svc *gmailv1.Service) *Client {
	return &Client{svc: svc}
}

// SearchQuery builds the Gmail search expression for a sender and a lower
// date bound. after is passed through untouched; callers supply whatever
// the Gmail query language accepts (e.g. 2024/01/31).
func SearchQuery(sender, after string) string {
	return fmt.Sprintf("from:%s after:%s", sender, after)
}

func (c *Client) ListMessageIDs(ctx context.Context, sender, after string, limit int64) ([]string, error) {
	resp, err := c.svc.Users.Messages.List(userID).
		Q(SearchQuery(sender, after)).
		LabelIds(inboxLabel).
		MaxResults(limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %w", ErrProvider, err)
	}
	if len(resp.Messages) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if limit > 0 && int64(len(ids)) >= limit {
			break
		}
		ids = append(ids, m.Id)
	}
	return ids, nil
}

func (c *Client) GetMessage(ctx context.Context, id string) (*gmailv1.Message, error) {
	msg, err := c.svc.Users.Messages.Get(userID, id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: get message %s: %w", ErrProvider, id, err)
	}
	return msg, nil
}
