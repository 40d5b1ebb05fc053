package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
	"github.com/devilmonastery/biniq/internal/localstore"
)

func newStoresCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stores",
		Aliases: []string{"store"},
		Short:   "Browse stores and interact with them",
	}

	cmd.AddCommand(newParamsCommand("list", "List stores",
		func(ctx context.Context, a *api.API, params map[string]any) (*client.Response, error) {
			return a.Stores.List(ctx, params)
		}))
	cmd.AddCommand(&cobra.Command{
		Use:   "mine",
		Short: "Show the store owned by the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Stores.Mine(ctx)
			})
		},
	})
	cmd.AddCommand(newIDCommand("show STORE_ID", "Show store details", func(ctx context.Context, a *api.API, id string) (*client.Response, error) {
		return a.Stores.Details(ctx, id)
	}))
	cmd.AddCommand(newStoresNearbyCommand())
	cmd.AddCommand(newStoresFavoritesCommand())
	cmd.AddCommand(newIDCommand("user-favorites USER_ID", "List another user's favorite stores", func(ctx context.Context, a *api.API, id string) (*client.Response, error) {
		return a.Stores.UserFavorites(ctx, id)
	}))
	cmd.AddCommand(newDataCommand("create", "Create a store", func(ctx context.Context, a *api.API, body any) (*client.Response, error) {
		return a.Stores.Create(ctx, body)
	}))
	cmd.AddCommand(newDataCommand("update", "Update your store", func(ctx context.Context, a *api.API, body any) (*client.Response, error) {
		return a.Stores.Update(ctx, body)
	}))
	cmd.AddCommand(newIDCommand("view STORE_ID", "Record a store view", func(ctx context.Context, a *api.API, id string) (*client.Response, error) {
		return a.Stores.View(ctx, id)
	}))
	cmd.AddCommand(newIDCommand("like STORE_ID", "Like a store", func(ctx context.Context, a *api.API, id string) (*client.Response, error) {
		return a.Stores.Like(ctx, id)
	}))
	cmd.AddCommand(newIDCommand("follow STORE_ID", "Follow a store", func(ctx context.Context, a *api.API, id string) (*client.Response, error) {
		return a.Stores.Follow(ctx, id)
	}))
	cmd.AddCommand(newStoresCommentCommand())
	cmd.AddCommand(newStoresFavoriteCommand())

	return cmd
}

func newStoresNearbyCommand() *cobra.Command {
	var (
		latitude  float64
		longitude float64
		params    []string
	)

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List stores near a location",
		Long: `List stores near a location.

Examples:
  biniq stores nearby --lat 40.7 --lng -74
  biniq stores nearby --lat 40.7 --lng -74 -p radius=10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}
			if query == nil {
				query = map[string]any{}
			}
			query["latitude"] = latitude
			query["longitude"] = longitude
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Stores.Nearby(ctx, query)
			})
		},
	}

	cmd.Flags().Float64Var(&latitude, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&longitude, "lng", 0, "Longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	addParamFlag(cmd, &params)
	return cmd
}

func newStoresFavoritesCommand() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List your favorite stores",
		Long: `List your favorite stores from the server, or with --local the store ids
favorited from this machine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			if !local {
				return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
					return a.Stores.Favorites(ctx)
				})
			}

			ids, err := localstore.GetList(cc.Store, localstore.KeyFavoriteStores)
			if err != nil {
				return err
			}
			return printList(cmd, ids, "No favorite stores")
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Show locally recorded favorites only")
	return cmd
}

func newStoresCommentCommand() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "comment STORE_ID",
		Short: "Comment on a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Stores.Comment(ctx, args[0], comment)
			})
		},
	}

	cmd.Flags().StringVarP(&comment, "message", "m", "", "Comment text")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func newStoresFavoriteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite STORE_ID",
		Short: "Add a store to your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			resp, err := cc.API.Stores.Favorite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := localstore.AddToSet(cc.Store, localstore.KeyFavoriteStores, args[0]); err != nil {
				cc.Logger.Warn("failed to record favorite", "store_id", args[0], "error", err)
			}
			return printResponse(cmd.OutOrStdout(), cc.Output, resp)
		},
	}
}

// printList prints local string lists in the selected output format
func printList(cmd *cobra.Command, items []string, empty string) error {
	cc := getCliContext(cmd)
	out := cmd.OutOrStdout()
	if cc.Output == "json" {
		return printJSONValue(out, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(out, empty)
		return nil
	}
	for _, item := range items {
		fmt.Fprintln(out, item)
	}
	return nil
}
