package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lawdesk/internal/server"
	"lawdesk/internal/store"

	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			st, err := store.NewSQLiteStore(cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("cannot open database: %w", err)
			}
			defer st.Close()

			srv := server.New(st, newExtractor(cfg), ingestOptions(cfg, 0)...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Server.Port), srv.Router())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default server.port)")

	return cmd
}
