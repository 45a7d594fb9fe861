package tui

import (
	"fmt"

	"lawdesk/internal/model"

	"github.com/charmbracelet/lipgloss"
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("39")).
	PaddingBottom(1)

func bodyHeader(e model.NormalizedEmail) string {
	return headerStyle.Render(fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\nDate: %s",
		e.Sender, e.To, e.Subject, shortDate(e.Date)))
}

func bodyFooter() string {
	return footerStyle.Render("o: open in gmail  esc: back  q: quit")
}
