package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a tunnel, its DNS record and local state",
		Long: `Delete stops and removes the tunnel's systemd unit if one exists, deletes
the tunnel on the provider side, then removes its DNS record and local
configuration. DNS and local cleanup are best-effort: their failures are
logged as warnings and do not fail the deletion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.coordinator.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Tunnel %s deleted\n", args[0])
			return nil
		},
	}
}
