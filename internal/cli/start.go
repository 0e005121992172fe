package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <name>",
		Short: "Run a tunnel in the foreground using its stored config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			name := args[0]
			if !a.store.Exists(name) {
				return fmt.Errorf("no config found for tunnel %q at %s; create it first", name, a.store.Path(name))
			}

			return a.provider.Run(cmd.Context(), a.store.Path(name), name, os.Stdout)
		},
	}
}
