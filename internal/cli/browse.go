package cli

import (
	"context"
	"fmt"

	"lawdesk/internal/gmail"
	"lawdesk/internal/logger"
	"lawdesk/internal/model"
	"lawdesk/internal/store"
	"lawdesk/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(configPath *string) *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Fetch inbox mail from a sender and browse it in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			creds, err := gmail.LoadCredentials(cfg.Auth.Credentials)
			if err != nil {
				return err
			}

			st, err := store.NewSQLiteStore(cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("cannot open database: %w", err)
			}
			defer st.Close()

			// JSON log lines would corrupt the alternate screen.
			logger.Quiet()

			opts := ingestOptions(cfg, flags.limit)
			load := func(ctx context.Context) (model.EmailBatch, error) {
				return fetchEmails(ctx, creds, flags.sender, flags.after, opts...)
			}
			appModel := tui.NewAppModel(load, flags.sender,
				tui.WithSaver(st, flags.caseID), tui.WithContext(cmd.Context()))
			p := tea.NewProgram(&appModel, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			finalModel, err := p.Run()
			if err != nil {
				return fmt.Errorf("alas, there's been an error: %w", err)
			}
			if m, ok := finalModel.(*tui.AppModel); ok && m.Err != nil {
				return m.Err
			}
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
