package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"lawdesk/internal/gmail"
	"lawdesk/internal/store"

	"github.com/spf13/cobra"
)

// fetchEmails is swapped out in tests.
var fetchEmails = gmail.FetchEmails

type fetchFlags struct {
	sender      string
	after       string
	limit       int64
	save        bool
	lawyerEmail string
	caseID      string
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sender, "sender", "", "Sender address to fetch mail from")
	cmd.Flags().StringVar(&f.after, "after", "", "Gmail after: date, passed to the search as typed (e.g. 2024/01/31)")
	cmd.Flags().Int64Var(&f.limit, "limit", 0, "Maximum messages to fetch (default gmail.max_results)")
	cmd.Flags().StringVar(&f.caseID, "case", "", "Case id to file saved emails under")
	_ = cmd.MarkFlagRequired("sender")
	_ = cmd.MarkFlagRequired("after")
}

func newFetchCmd(configPath *string) *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch inbox mail from a sender and print it as JSON",
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

			batch, fetchErr := fetchEmails(cmd.Context(), creds, flags.sender, flags.after,
				ingestOptions(cfg, flags.limit)...)
			if fetchErr != nil && batch.Emails == nil {
				return fetchErr
			}

			if flags.save {
				st, err := store.NewSQLiteStore(cfg.Store.Path)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.SaveEmails(cmd.Context(), flags.lawyerEmail, flags.caseID, batch.Emails); err != nil {
					return err
				}
				total, err := st.CountEmails(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d emails to %s (%d stored)\n", batch.Len(), cfg.Store.Path, total)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(batch); err != nil {
				return err
			}
			if fetchErr != nil {
				return fmt.Errorf("some messages were skipped: %w", fetchErr)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.save, "save", false, "Also save the batch to the local store")
	cmd.Flags().StringVar(&flags.lawyerEmail, "lawyer", "", "Lawyer email to file saved emails under")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !flags.save && (flags.caseID != "" || flags.lawyerEmail != "") {
			return errors.New("--case and --lawyer require --save")
		}
		return nil
	}

	return cmd
}
