package gmail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lawdesk/internal/logger"
	"lawdesk/internal/metrics"
	"lawdesk/internal/model"

	"go.uber.org/zap"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// DefaultMaxResults caps how many messages one ingest run lists.
const DefaultMaxResults = 5

// Policy decides what a failed message fetch does to the rest of a batch.
type Policy int

const (
	// FailFast aborts the batch on the first failure and returns no emails.
	FailFast Policy = iota
	// SkipFailed drops failed messages and returns the rest together with
	// the joined fetch errors.
	SkipFailed
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case SkipFailed:
		return "skip-failed"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts the names returned by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail-fast":
		return FailFast, nil
	case "skip-failed":
		return SkipFailed, nil
	}
	return FailFast, fmt.Errorf("unknown ingest policy %q", s)
}

type ingestOptions struct {
	limit      int64
	policy     Policy
	clientOpts []option.ClientOption
}

type Option func(*ingestOptions)

// WithLimit overrides DefaultMaxResults. Non-positive values are ignored.
func WithLimit(n int64) Option {
	return func(o *ingestOptions) {
		if n > 0 {
			o.limit = n
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(o *ingestOptions) { o.policy = p }
}

// WithClientOptions passes options through to the Gmail service.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *ingestOptions) { o.clientOpts = append(o.clientOpts, opts...) }
}

func newIngestOptions(opts []Option) ingestOptions {
	o := ingestOptions{limit: DefaultMaxResults, policy: FailFast}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FetchEmails authorizes with creds and ingests the inbox messages from
// sender received after startDate.
func FetchEmails(ctx context.Context, creds Credentials, sender, startDate string, opts ...Option) (model.EmailBatch, error) {
	o := newIngestOptions(opts)
	svc, err := NewService(ctx, creds, o.clientOpts...)
	if err != nil {
		metrics.IngestFailures.WithLabelValues(metrics.StageAuth).Inc()
		logger.Logger.Error("authentication failed", zap.Error(err))
		return model.EmailBatch{}, err
	}
	return Ingest(ctx, NewClient(svc), sender, startDate, opts...)
}

// Ingest lists matching messages and normalizes each one in listing order,
// one at a time. Under FailFast any error returns an empty batch.
func Ingest(ctx context.Context, src MessageSource, sender, startDate string, opts ...Option) (model.EmailBatch, error) {
	o := newIngestOptions(opts)
	start := time.Now()
	defer func() { metrics.IngestDuration.Observe(time.Since(start).Seconds()) }()

	log := logger.Logger.With(
		zap.String("sender", sender),
		zap.String("after", startDate),
		zap.Stringer("policy", o.policy),
	)

	ids, err := src.ListMessageIDs(ctx, sender, startDate, o.limit)
	if err != nil {
		metrics.IngestFailures.WithLabelValues(metrics.StageList).Inc()
		log.Error("failed to list messages", zap.Error(err))
		return model.EmailBatch{}, err
	}
	batch := model.NewEmailBatch()
	if len(ids) == 0 {
		log.Info("no messages found in inbox")
		return batch, nil
	}
	log.Info("listed messages", zap.Int("count", len(ids)))

	var skipped []error
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return model.EmailBatch{}, ctx.Err()
		default:
		}
		msg, err := src.GetMessage(ctx, id)
		if err != nil {
			metrics.IngestFailures.WithLabelValues(metrics.StageFetch).Inc()
			if o.policy == FailFast {
				log.Error("failed to fetch the message, aborting batch",
					zap.String("gmailId", id), zap.Error(err))
				return model.EmailBatch{}, err
			}
			log.Warn("skipping message", zap.String("gmailId", id), zap.Error(err))
			skipped = append(skipped, err)
			continue
		}
		log.Debug("fetched message", zap.String("gmailId", id))
		batch.Emails = append(batch.Emails, Normalize(id, msg))
		metrics.EmailsIngested.Inc()
	}
	return batch, errors.Join(skipped...)
}

// Normalize assembles the output record for one fetched message. id is the
// listing id; headers fall back to the package defaults.
func Normalize(id string, msg *gmailv1.Message) model.NormalizedEmail {
	var headers HeaderSet
	if msg != nil && msg.Payload != nil {
		headers = ExtractHeaders(msg.Payload.Headers)
	}
	return model.NormalizedEmail{
		GmailID:  id,
		Subject:  headers.Get("subject", DefaultSubject),
		Sender:   headers.Get("from", DefaultSender),
		To:       headers.Get("to", DefaultRecipient),
		Date:     headers.Get("date", DefaultDate),
		BodyText: strings.TrimSpace(ResolveBody(msg)),
	}
}
