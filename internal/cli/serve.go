package cli

import (
	"github.com/spf13/cobra"

	"tunnelctl/internal/adapter/httpserver"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the read-only local status API",
		Long: `Serve exposes tunnel listing and stored configurations as JSON on a
local port. The API is read-only; all lifecycle changes go through the
create and delete commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if port == 0 {
				port = a.cfg.StatusPort
			}

			api := httpserver.NewAPI(a.provider, a.store, a.logger)
			server := httpserver.NewServer(port, api, a.logger)
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to TUNNELCTL_STATUS_PORT)")
	return cmd
}
