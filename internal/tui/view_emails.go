package tui

import (
	"fmt"

	"lawdesk/internal/model"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

// emailItem wraps NormalizedEmail for the list display.
type emailItem struct {
	model.NormalizedEmail
}

func (e emailItem) Title() string { return e.Subject }
func (e emailItem) Description() string {
	return fmt.Sprintf("From: %s  Date: %s", e.Sender, shortDate(e.Date))
}

var footerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241")).
	PaddingTop(1)

func emailsFooter(canSave bool) string {
	if canSave {
		return footerStyle.Render("enter: view body  o: open in gmail  s: save  r: reload  q: quit")
	}
	return footerStyle.Render("enter: view body  o: open in gmail  r: reload  q: quit")
}

// emailItems keeps batch order; the batch is already in listing order.
func emailItems(batch model.EmailBatch) []list.Item {
	items := make([]list.Item, len(batch.Emails))
	for i, e := range batch.Emails {
		items[i] = emailItem{e}
	}
	return items
}
