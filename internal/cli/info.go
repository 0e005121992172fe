package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show the provider's detail view of a tunnel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			detail, err := a.provider.Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Print(detail)
			return nil
		},
	}
}
