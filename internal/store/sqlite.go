package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lawdesk/internal/model"
	"lawdesk/internal/util"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lawyer or case does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore persists lawyers, cases and ingested emails in a local SQLite
// database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at the given path and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API serve reads while a fetch is being saved.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS lawyers (
	email   TEXT PRIMARY KEY,
	name    TEXT NOT NULL DEFAULT '',
	picture TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cases (
	id           TEXT PRIMARY KEY,
	lawyer_email TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	client       TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cases_lawyer ON cases(lawyer_email);

CREATE TABLE IF NOT EXISTS emails (
	gmail_id     TEXT PRIMARY KEY,
	lawyer_email TEXT NOT NULL DEFAULT '',
	case_id      TEXT NOT NULL DEFAULT '',
	subject      TEXT NOT NULL DEFAULT '',
	sender       TEXT NOT NULL DEFAULT '',
	sender_email TEXT NOT NULL DEFAULT '',
	recipient    TEXT NOT NULL DEFAULT '',
	date         TEXT NOT NULL DEFAULT '',
	body_text    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_emails_sender ON emails(sender_email);
CREATE INDEX IF NOT EXISTS idx_emails_case ON emails(case_id);
`
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateLawyer inserts l or refreshes the name and picture of an existing
// lawyer with the same email.
func (s *SQLiteStore) CreateLawyer(ctx context.Context, l model.Lawyer) error {
	if l.Email == "" {
		return errors.New("lawyer email is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lawyers (email, name, picture) VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name    = excluded.name,
			picture = excluded.picture
	`, strings.ToLower(l.Email), l.Name, l.Picture)
	if err != nil {
		return fmt.Errorf("upsert lawyer: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetLawyer(ctx context.Context, email string) (model.Lawyer, error) {
	var l model.Lawyer
	err := s.db.QueryRowContext(ctx,
		"SELECT email, name, picture FROM lawyers WHERE email = ?", strings.ToLower(email),
	).Scan(&l.Email, &l.Name, &l.Picture)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Lawyer{}, fmt.Errorf("lawyer %s: %w", email, ErrNotFound)
	}
	return l, err
}

// CreateCase stores c, assigning an id and creation time when they are
// unset, and returns the stored case.
func (s *SQLiteStore) CreateCase(ctx context.Context, c model.Case) (model.Case, error) {
	if c.LawyerEmail == "" {
		return model.Case{}, errors.New("case lawyer_email is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.LawyerEmail = strings.ToLower(c.LawyerEmail)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cases (id, lawyer_email, title, description, client, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.LawyerEmail, c.Title, c.Description, c.Client, c.CreatedAt.Format(timeLayout))
	if err != nil {
		return model.Case{}, fmt.Errorf("insert case: %w", err)
	}
	return c, nil
}

const caseColumns = "id, lawyer_email, title, description, client, created_at"

func scanCase(row interface{ Scan(...any) error }) (model.Case, error) {
	var (
		c       model.Case
		created string
	)
	if err := row.Scan(&c.ID, &c.LawyerEmail, &c.Title, &c.Description, &c.Client, &created); err != nil {
		return model.Case{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return model.Case{}, fmt.Errorf("case %s created_at: %w", c.ID, err)
	}
	c.CreatedAt = t
	return c, nil
}

func (s *SQLiteStore) GetCase(ctx context.Context, id string) (model.Case, error) {
	c, err := scanCase(s.db.QueryRowContext(ctx,
		"SELECT "+caseColumns+" FROM cases WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Case{}, fmt.Errorf("case %s: %w", id, ErrNotFound)
	}
	return c, err
}

// ListCases returns the cases owned by lawyerEmail, or every case when it is
// empty, newest first.
func (s *SQLiteStore) ListCases(ctx context.Context, lawyerEmail string) ([]model.Case, error) {
	query := "SELECT " + caseColumns + " FROM cases"
	var args []any
	if lawyerEmail != "" {
		query += " WHERE lawyer_email = ?"
		args = append(args, strings.ToLower(lawyerEmail))
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := []model.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// SaveEmails upserts a batch by gmail id. lawyerEmail and caseID may be
// empty; an empty value keeps whatever owner a stored row already has.
func (s *SQLiteStore) SaveEmails(ctx context.Context, lawyerEmail, caseID string, emails []model.NormalizedEmail) error {
	if len(emails) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO emails (gmail_id, lawyer_email, case_id, subject, sender, sender_email, recipient, date, body_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(gmail_id) DO UPDATE SET
			lawyer_email = CASE WHEN excluded.lawyer_email <> '' THEN excluded.lawyer_email ELSE emails.lawyer_email END,
			case_id      = CASE WHEN excluded.case_id <> '' THEN excluded.case_id ELSE emails.case_id END,
			subject      = excluded.subject,
			sender       = excluded.sender,
			sender_email = excluded.sender_email,
			recipient    = excluded.recipient,
			date         = excluded.date,
			body_text    = excluded.body_text
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	lawyerEmail = strings.ToLower(lawyerEmail)
	for _, e := range emails {
		_, err := stmt.ExecContext(ctx, e.GmailID, lawyerEmail, caseID,
			e.Subject, e.Sender, util.NormalizeSender(e.Sender), e.To, e.Date, e.BodyText)
		if err != nil {
			return fmt.Errorf("save email %s: %w", e.GmailID, err)
		}
	}
	return tx.Commit()
}

// EmailFilter narrows ListEmails. Zero fields match everything.
type EmailFilter struct {
	// SenderEmail may be a bare address or a full From header; it is
	// normalized the same way stored senders are.
	SenderEmail string
	CaseID      string
	LawyerEmail string
}

// ListEmails returns stored emails matching f in the order they were first saved.
func (s *SQLiteStore) ListEmails(ctx context.Context, f EmailFilter) ([]model.StoredEmail, error) {
	var (
		where []string
		args  []any
	)
	if f.SenderEmail != "" {
		sender := util.NormalizeSender(f.SenderEmail)
		if sender == "" {
			sender = strings.ToLower(strings.TrimSpace(f.SenderEmail))
		}
		where = append(where, "sender_email = ?")
		args = append(args, sender)
	}
	if f.CaseID != "" {
		where = append(where, "case_id = ?")
		args = append(args, f.CaseID)
	}
	if f.LawyerEmail != "" {
		where = append(where, "lawyer_email = ?")
		args = append(args, strings.ToLower(f.LawyerEmail))
	}
	query := "SELECT gmail_id, lawyer_email, case_id, subject, sender, sender_email, recipient, date, body_text FROM emails"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := []model.StoredEmail{}
	for rows.Next() {
		var e model.StoredEmail
		if err := rows.Scan(&e.GmailID, &e.LawyerEmail, &e.CaseID, &e.Subject, &e.Sender,
			&e.SenderEmail, &e.To, &e.Date, &e.BodyText); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

func (s *SQLiteStore) CountEmails(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM emails").Scan(&count)
	return count, err
}
