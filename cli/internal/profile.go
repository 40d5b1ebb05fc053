package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and manage your own account",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Users.Profile(ctx)
			})
		},
	})
	cmd.AddCommand(newProfileUpdateCommand())
	cmd.AddCommand(newProfileDeleteCommand())

	return cmd
}

func newProfileUpdateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		Long: `Update profile fields with a JSON body.

Examples:
  biniq profile update -d '{"full_name": "Jane Doe", "phone": "555-0100"}'
  biniq profile update -d @profile.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseData(data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Users.UpdateProfile(ctx, body)
			})
		},
	}

	addDataFlag(cmd, &data, true)
	return cmd
}

func newProfileDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Permanently delete your account",
		Long: `Look up your user id, delete the account and forget the stored token.
You are asked to confirm unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(cmd.ErrOrStderr(), "Delete your account? This cannot be undone. [y/N]: ")
				line, _ := stdinReader(cmd).ReadString('\n')
				if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
					return errors.New("aborted")
				}
			}

			cc := getCliContext(cmd)
			if _, err := cc.API.Users.DeleteAccount(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Account deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
