package tui

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"lawdesk/internal/gmail"
	"lawdesk/internal/model"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type viewState int

const (
	viewLoading viewState = iota
	viewEmails            // batch list
	viewBody              // single email body
)

// LoadFunc produces the batch to browse, typically a gmail.FetchEmails call.
type LoadFunc func(ctx context.Context) (model.EmailBatch, error)

// Saver persists a browsed batch. *store.SQLiteStore satisfies it.
type Saver interface {
	SaveEmails(ctx context.Context, lawyerEmail, caseID string, emails []model.NormalizedEmail) error
}

type AppModel struct {
	// Core state
	ctx     context.Context
	load    LoadFunc
	saver   Saver
	caseID  string
	open    func(string) error
	Err     error
	status  string
	title   string
	batch   model.EmailBatch
	skipped error

	// View state machine
	view     viewState
	selected *model.NormalizedEmail

	// Sub-models
	emailsList   list.Model
	bodyViewport viewport.Model

	// Layout
	width, height int
}

type Option func(*AppModel)

// WithSaver enables the save key. Saved emails are filed under caseID,
// which may be empty.
func WithSaver(s Saver, caseID string) Option {
	return func(m *AppModel) {
		m.saver = s
		m.caseID = caseID
	}
}

// WithContext bounds the load and save commands; cancelling ctx aborts them.
func WithContext(ctx context.Context) Option {
	return func(m *AppModel) { m.ctx = ctx }
}

// WithOpener replaces the browser launcher used by the open key.
func WithOpener(open func(string) error) Option {
	return func(m *AppModel) { m.open = open }
}

// NewAppModel builds a browser over the batch returned by load. title
// heads the list, e.g. the sender being browsed.
func NewAppModel(load LoadFunc, title string, opts ...Option) AppModel {
	el := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	// Remove esc from the list's built-in Quit binding so it doesn't exit on home
	el.KeyMap.Quit.SetKeys("q")

	m := AppModel{
		ctx:          context.Background(),
		load:         load,
		open:         gmail.OpenBrowser,
		title:        title,
		status:       "Fetching emails...",
		view:         viewLoading,
		emailsList:   el,
		bodyViewport: viewport.New(0, 0),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m *AppModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.emailsList.SetSize(msg.Width, msg.Height-4) // room for footer
		m.bodyViewport.Width = msg.Width
		m.bodyViewport.Height = msg.Height - 8 // room for header + footer
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case batchLoadedMsg:
		// A failed batch carries no emails; a skip-failed batch carries
		// both emails and the joined fetch errors.
		if msg.err != nil && msg.batch.Emails == nil {
			m.Err = msg.err
			m.status = "Fetch failed!"
			return m, tea.Quit
		}
		m.batch = msg.batch
		m.skipped = msg.err
		m.emailsList.SetItems(emailItems(m.batch))
		m.emailsList.Title = fmt.Sprintf("%s (%d emails)", m.title, m.batch.Len())
		m.view = viewEmails
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Some messages were skipped: %v", msg.err)
		}
		return m, nil

	case actionResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = fmt.Sprintf("%s complete", msg.action)
		}
		return m, clearStatusAfter(2 * time.Second)

	case statusMsg:
		if string(msg) == "" {
			m.status = ""
		}
		return m, nil
	}

	// Delegate to active sub-model
	var cmd tea.Cmd
	switch m.view {
	case viewEmails:
		m.emailsList, cmd = m.emailsList.Update(msg)
	case viewBody:
		m.bodyViewport, cmd = m.bodyViewport.Update(msg)
	}
	return m, cmd
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	}

	switch m.view {
	case viewLoading:
		if key == "q" {
			return m, tea.Quit
		}
		return m, nil

	case viewEmails:
		// When the list is filtering, let it handle all keys except ctrl+c
		if m.emailsList.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.emailsList, cmd = m.emailsList.Update(msg)
			return m, cmd
		}
		switch key {
		case "q":
			return m, tea.Quit
		case "enter":
			return m.enterEmail()
		case "o":
			if item, ok := m.emailsList.SelectedItem().(emailItem); ok {
				return m, m.openCmd(item.GmailID)
			}
			return m, nil
		case "s":
			return m, m.saveCmd()
		case "r":
			m.view = viewLoading
			m.status = "Fetching emails..."
			return m, m.loadCmd()
		}
		var cmd tea.Cmd
		m.emailsList, cmd = m.emailsList.Update(msg)
		return m, cmd

	case viewBody:
		switch key {
		case "q":
			return m, tea.Quit
		case "esc":
			m.view = viewEmails
			m.selected = nil
			return m, nil
		case "o":
			if m.selected != nil {
				return m, m.openCmd(m.selected.GmailID)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.bodyViewport, cmd = m.bodyViewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *AppModel) enterEmail() (tea.Model, tea.Cmd) {
	item, ok := m.emailsList.SelectedItem().(emailItem)
	if !ok {
		return m, nil
	}
	e := item.NormalizedEmail
	m.selected = &e
	body := e.BodyText
	if body == "" {
		body = "(empty body)"
	}
	m.bodyViewport.SetContent(bodyHeader(e) + "\n\n" + body)
	m.bodyViewport.GotoTop()
	m.view = viewBody
	return m, nil
}

// Commands

func (m *AppModel) loadCmd() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		batch, err := load(ctx)
		return batchLoadedMsg{batch: batch, err: err}
	}
}

func (m *AppModel) openCmd(gmailID string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return actionResultMsg{action: "Open", err: open(gmail.MessageURL(gmailID))}
	}
}

func (m *AppModel) saveCmd() tea.Cmd {
	if m.saver == nil {
		m.status = "No store configured"
		return clearStatusAfter(2 * time.Second)
	}
	ctx, saver, caseID, emails := m.ctx, m.saver, m.caseID, m.batch.Emails
	m.status = "Saving..."
	return func() tea.Msg {
		err := saver.SaveEmails(ctx, "", caseID, emails)
		return actionResultMsg{action: "Save", err: err}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusMsg("")
	})
}

// View renders the appropriate view based on current state.
func (m *AppModel) View() string {
	// Error state
	if m.Err != nil {
		return "Error: " + m.Err.Error() + "\n"
	}

	// Loading
	if m.view == viewLoading {
		if m.status != "" {
			return m.status + "\n"
		}
		return "Loading...\n"
	}

	var b strings.Builder

	switch m.view {
	case viewEmails:
		if m.batch.Len() == 0 {
			b.WriteString("No emails found in inbox.\n")
		} else {
			b.WriteString(m.emailsList.View())
			b.WriteString("\n")
		}
		b.WriteString(emailsFooter(m.saver != nil))
	case viewBody:
		b.WriteString(m.bodyViewport.View())
		b.WriteString("\n")
		b.WriteString(bodyFooter())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}

	return b.String()
}

// shortDate renders an RFC 5322 Date header as a short date. Headers that
// do not parse (including the "(no date)" default) are shown as-is.
func shortDate(header string) string {
	if header == "" {
		return ""
	}
	if t, err := mail.ParseDate(header); err == nil {
		return t.Format("Jan 2, 2006")
	}
	return header
}
