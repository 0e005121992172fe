package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func newTailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tail <name>",
		Short: "Stream a tunnel's logs until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.provider.Tail(cmd.Context(), args[0], os.Stdout)
		},
	}
}
