package tui

import "lawdesk/internal/model"

// Async message types for Bubble Tea commands.

type batchLoadedMsg struct {
	batch model.EmailBatch
	err   error
}

type actionResultMsg struct {
	action string // "Save", "Open"
	err    error
}

type statusMsg string
