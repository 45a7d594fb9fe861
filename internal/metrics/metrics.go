package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure stages reported on IngestFailures.
const (
	StageAuth  = "auth"
	StageList  = "list"
	StageFetch = "fetch"
)

var (
	EmailsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lawdesk_emails_ingested_total",
		Help: "Total number of messages normalized into an email batch",
	})
	PartDecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lawdesk_part_decode_failures_total",
		Help: "Total number of MIME part payloads that could not be decoded",
	})
	IngestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lawdesk_ingest_failures_total",
		Help: "Total number of ingest runs or messages that failed, by stage",
	}, []string{"stage"})
	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lawdesk_ingest_duration_seconds",
		Help:    "Wall time of one email ingest run",
		Buckets: prometheus.DefBuckets,
	})
)
