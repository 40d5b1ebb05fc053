package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
	"github.com/devilmonastery/biniq/internal/localstore"
)

func newProductsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse and manage products",
	}

	cmd.AddCommand(newProductsListCommand())
	cmd.AddCommand(newParamsCommand("trending", "List trending products",
		func(ctx context.Context, a *api.API, params map[string]any) (*client.Response, error) {
			return a.Products.Trending(ctx, params)
		}))
	cmd.AddCommand(newParamsCommand("activity", "Show recent product activity",
		func(ctx context.Context, a *api.API, params map[string]any) (*client.Response, error) {
			return a.Products.Activity(ctx, params)
		}))
	cmd.AddCommand(newIDCommand("show PRODUCT_ID", "Show a product", func(ctx context.Context, a *api.API, id string) (*client.Response, error) {
		return a.Products.Get(ctx, id)
	}))
	cmd.AddCommand(newDataCommand("create", "Create a product", func(ctx context.Context, a *api.API, body any) (*client.Response, error) {
		return a.Products.Create(ctx, body)
	}))
	cmd.AddCommand(newIDDataCommand("update PRODUCT_ID", "Update a product", func(ctx context.Context, a *api.API, id string, body any) (*client.Response, error) {
		return a.Products.Update(ctx, id, body)
	}))
	cmd.AddCommand(newIDCommand("delete PRODUCT_ID", "Delete a product", func(ctx context.Context, a *api.API, id string) (*client.Response, error) {
		return a.Products.Delete(ctx, id)
	}))

	return cmd
}

func newProductsListCommand() *cobra.Command {
	var (
		params []string
		search string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Long: `List products. Searches given with --search are remembered and shown by
'biniq search history'.

Examples:
  biniq products list
  biniq products list --search "pallet" -p category=electronics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			query, err := parseParams(params)
			if err != nil {
				return err
			}

			if search = strings.TrimSpace(search); search != "" {
				if query == nil {
					query = map[string]any{}
				}
				query["search"] = search
				if _, err := localstore.AddRecentSearch(cc.Store, search); err != nil {
					cc.Logger.Warn("failed to record search", "error", err)
				}
			}

			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Products.List(ctx, query)
			})
		},
	}

	addParamFlag(cmd, &params)
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search text")
	return cmd
}

func newCategoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and create product categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Products.Categories(ctx)
			})
		},
	})
	cmd.AddCommand(newDataCommand("create", "Create a category", func(ctx context.Context, a *api.API, body any) (*client.Response, error) {
		return a.Products.CreateCategory(ctx, body)
	}))

	return cmd
}
