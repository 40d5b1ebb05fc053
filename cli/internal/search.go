package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/localstore"
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Recent product searches",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Show recent searches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			searches, err := localstore.GetList(getCliContext(cmd).Store, localstore.KeyRecentSearches)
			if err != nil {
				return err
			}
			return printList(cmd, searches, "No recent searches")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localstore.ClearRecentSearches(getCliContext(cmd).Store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Search history cleared")
			return nil
		},
	})

	return cmd
}
