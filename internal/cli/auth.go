package cli

import (
	"fmt"

	"lawdesk/internal/gmail"

	"github.com/spf13/cobra"
)

func newAuthCmd(configPath *string) *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize read-only Gmail access and save the credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			oauthCfg, err := gmail.LoadClientConfig(cfg.Auth.ClientSecrets)
			if err != nil {
				return err
			}

			open := gmail.OpenBrowser
			if noBrowser {
				open = nil
			}
			creds, err := gmail.Authorize(cmd.Context(), oauthCfg, cmd.InOrStdin(), cmd.ErrOrStderr(), open)
			if err != nil {
				return err
			}
			if err := gmail.SaveCredentials(cfg.Auth.Credentials, creds); err != nil {
				return fmt.Errorf("save credentials: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credentials saved to %s\n", cfg.Auth.Credentials)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")

	return cmd
}
