package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tunnelctl/internal/usecase/lifecycle"
)

func newCreateCmd() *cobra.Command {
	var installService bool

	cmd := &cobra.Command{
		Use:   "create <name> <port> <subdomain>",
		Short: "Create a tunnel and route its hostname to a local port",
		Long: `Create registers a named tunnel with cloudflared, writes its local
configuration, and routes <subdomain>.<domain> to http://localhost:<port>.

With --service the tunnel is also installed as a systemd unit, enabled and
started; that step requires root. If service installation fails the tunnel
is still created and the start command is printed instead.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			result, err := a.coordinator.Create(cmd.Context(), lifecycle.CreateInput{
				Name:           args[0],
				Port:           args[1],
				Subdomain:      args[2],
				InstallService: installService,
			})
			if err != nil {
				return err
			}

			t := result.Tunnel
			fmt.Printf("Tunnel %s created (id %s)\n", t.Name, t.RemoteID)
			fmt.Printf("  https://%s -> http://localhost:%d\n", t.Hostname, t.Port)
			fmt.Printf("  config: %s\n", t.ConfigPath)

			switch {
			case t.ServiceInstalled:
				fmt.Printf("  service: %s (enabled, running)\n", t.Name)
			case result.ServiceErr != nil:
				fmt.Printf("  service install failed: %v\n", result.ServiceErr)
				fmt.Printf("  start manually with: tunnelctl start %s\n", t.Name)
			default:
				fmt.Printf("  start with: tunnelctl start %s\n", t.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&installService, "service", false, "install and start a systemd unit for the tunnel")
	return cmd
}
