package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
)

func newSubscriptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"sub"},
		Short:   "Subscription tiers and the current subscription",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "tiers",
		Short: "List subscription tiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Subscriptions.Tiers(ctx)
			})
		},
	})
	cmd.AddCommand(newDataCommand("update-tiers", "Replace the subscription tiers (admin)", func(ctx context.Context, a *api.API, body any) (*client.Response, error) {
		return a.Subscriptions.UpdateTiers(ctx, body)
	}))
	cmd.AddCommand(newSubscribeCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Subscriptions.Current(ctx)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cancel",
		Short: "Cancel the current subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Subscriptions.Cancel(ctx, nil)
			})
		},
	})

	return cmd
}

func newSubscribeCommand() *cobra.Command {
	var (
		tier string
		data string
	)

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe to a tier",
		Long: `Subscribe to a tier by name, or send a full request body with --data.

Examples:
  biniq subscriptions subscribe --tier pro
  biniq subscriptions subscribe -d '{"tier": "pro", "payment_method": "card"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseObject(data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			setIfNotEmpty(body, "tier", tier)
			if _, ok := body["tier"]; !ok {
				return errMissingTier
			}
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Subscriptions.Subscribe(ctx, body)
			})
		},
	}

	cmd.Flags().StringVar(&tier, "tier", "", "Tier name")
	addDataFlag(cmd, &data, false)
	return cmd
}
