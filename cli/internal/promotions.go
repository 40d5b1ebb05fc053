package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
)

func newPromotionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "promotions",
		Aliases: []string{"promos"},
		Short:   "Manage store promotions",
	}

	cmd.AddCommand(newParamsCommand("list", "List promotions",
		func(ctx context.Context, a *api.API, params map[string]any) (*client.Response, error) {
			return a.Promotions.List(ctx, params)
		}))
	cmd.AddCommand(newIDCommand("show PROMOTION_ID", "Show a promotion", func(ctx context.Context, a *api.API, id string) (*client.Response, error) {
		return a.Promotions.Get(ctx, id)
	}))
	cmd.AddCommand(newDataCommand("create", "Create a promotion", func(ctx context.Context, a *api.API, body any) (*client.Response, error) {
		return a.Promotions.Create(ctx, body)
	}))
	cmd.AddCommand(newIDDataCommand("update PROMOTION_ID", "Update a promotion", func(ctx context.Context, a *api.API, id string, body any) (*client.Response, error) {
		return a.Promotions.Update(ctx, id, body)
	}))
	cmd.AddCommand(newIDCommand("delete PROMOTION_ID", "Delete a promotion", func(ctx context.Context, a *api.API, id string) (*client.Response, error) {
		return a.Promotions.Delete(ctx, id)
	}))

	return cmd
}
