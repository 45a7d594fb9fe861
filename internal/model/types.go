package model

import "time"

// NormalizedEmail is one retrieved Gmail message reduced to display fields.
type NormalizedEmail struct {
	GmailID  string `json:"gmail_id"`
	Subject  string `json:"subject"`
	Sender   string `json:"sender"`
	To       string `json:"to"`
	Date     string `json:"date"`
	BodyText string `json:"body_text"`
}

func (e NormalizedEmail) FilterValue() string { return e.Subject + " " + e.Sender }

// EmailBatch keeps the order returned by the message lister. No dedup.
type EmailBatch struct {
	Emails []NormalizedEmail `json:"emails"`
}

// NewEmailBatch returns an empty batch that serializes "emails" as [] instead of null.
func NewEmailBatch() EmailBatch {
	return EmailBatch{Emails: []NormalizedEmail{}}
}

func (b EmailBatch) Len() int { return len(b.Emails) }

// Lawyer is an authenticated user of the backend, keyed by email.
type Lawyer struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Case groups emails and documents for one matter.
type Case struct {
	ID          string    `json:"id"`
	LawyerEmail string    `json:"lawyer_email"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Client      string    `json:"client"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoredEmail is a NormalizedEmail as persisted, with its ownership and
// the normalized sender address used for lookups.
type StoredEmail struct {
	NormalizedEmail
	LawyerEmail string `json:"lawyer_email,omitempty"`
	CaseID      string `json:"case_id,omitempty"`
	SenderEmail string `json:"sender_email,omitempty"`
}
