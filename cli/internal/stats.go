package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
)

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Admin dashboard statistics",
	}

	cmd.AddCommand(newParamsCommand("paid-users", "Paid user counts",
		func(ctx context.Context, a *api.API, params map[string]any) (*client.Response, error) {
			return a.Stats.PaidUsers(ctx, params)
		}))
	cmd.AddCommand(newParamsCommand("store-owners", "Store owner counts",
		func(ctx context.Context, a *api.API, params map[string]any) (*client.Response, error) {
			return a.Stats.StoreOwners(ctx, params)
		}))
	cmd.AddCommand(newParamsCommand("resellers", "Reseller counts",
		func(ctx context.Context, a *api.API, params map[string]any) (*client.Response, error) {
			return a.Stats.Resellers(ctx, params)
		}))
	cmd.AddCommand(newParamsCommand("revenue", "Revenue totals",
		func(ctx context.Context, a *api.API, params map[string]any) (*client.Response, error) {
			return a.Stats.Revenue(ctx, params)
		}))
	cmd.AddCommand(newParamsCommand("recent-activity", "Recent platform activity",
		func(ctx context.Context, a *api.API, params map[string]any) (*client.Response, error) {
			return a.Stats.RecentActivity(ctx, params)
		}))
	cmd.AddCommand(newParamsCommand("recent-feedbacks", "Recent feedback",
		func(ctx context.Context, a *api.API, params map[string]any) (*client.Response, error) {
			return a.Stats.RecentFeedbacks(ctx, params)
		}))
	cmd.AddCommand(&cobra.Command{
		Use:   "quick",
		Short: "Dashboard summary counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Stats.Quick(ctx)
			})
		},
	})

	return cmd
}
