package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
	"github.com/devilmonastery/biniq/internal/localstore"
)

func newNotificationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read and send notifications",
	}

	cmd.AddCommand(newNotificationsListCommand())
	cmd.AddCommand(newDataCommand("create", "Send a notification (admin)", func(ctx context.Context, a *api.API, body any) (*client.Response, error) {
		return a.Notifications.Create(ctx, body)
	}))
	cmd.AddCommand(newNotificationsReadCommand())
	cmd.AddCommand(newNotificationsDeleteCommand())

	return cmd
}

func newNotificationsListCommand() *cobra.Command {
	var (
		params []string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Long: `List notifications. Notifications deleted on this machine are hidden unless
--all is given, and ones read here are marked read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			query, err := parseParams(params)
			if err != nil {
				return err
			}

			resp, err := cc.API.Notifications.List(cmd.Context(), query)
			if err != nil {
				return err
			}
			if !resp.JSON {
				return printResponse(cmd.OutOrStdout(), cc.Output, resp)
			}

			read, err := localstore.GetList(cc.Store, localstore.KeyReadNotifications)
			if err != nil {
				return err
			}
			var deleted []string
			if !all {
				if deleted, err = localstore.GetList(cc.Store, localstore.KeyDeletedNotifications); err != nil {
					return err
				}
			}

			v := applyLocalNotificationState(resp.Value(), read, deleted)
			if cc.Output == "json" {
				return printJSONValue(cmd.OutOrStdout(), v)
			}
			return printValue(cmd.OutOrStdout(), v)
		},
	}

	addParamFlag(cmd, &params)
	cmd.Flags().BoolVar(&all, "all", false, "Include notifications deleted locally")
	return cmd
}

// applyLocalNotificationState drops deleted notifications and sets "read" on read ones.
// It accepts a bare array or an object wrapping a single array.
func applyLocalNotificationState(v any, read, deleted []string) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			obj, ok := item.(map[string]any)
			if !ok {
				out = append(out, item)
				continue
			}
			id, _ := obj["_id"].(string)
			if id != "" && slices.Contains(deleted, id) {
				continue
			}
			if id != "" && slices.Contains(read, id) {
				obj["read"] = true
			}
			out = append(out, obj)
		}
		return out
	case map[string]any:
		for k, inner := range val {
			if list, ok := inner.([]any); ok {
				val[k] = applyLocalNotificationState(list, read, deleted)
			}
		}
		return val
	default:
		return v
	}
}

func newNotificationsReadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read NOTIFICATION_ID",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			resp, err := cc.API.Notifications.MarkRead(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := localstore.AddToSet(cc.Store, localstore.KeyReadNotifications, args[0]); err != nil {
				cc.Logger.Warn("failed to record read notification", "id", args[0], "error", err)
			}
			return printResponse(cmd.OutOrStdout(), cc.Output, resp)
		},
	}
}

func newNotificationsDeleteCommand() *cobra.Command {
	var restore bool

	cmd := &cobra.Command{
		Use:   "delete NOTIFICATION_ID",
		Short: "Hide a notification on this machine",
		Long: `Hide a notification from 'notifications list'. The server has no delete
endpoint for notifications, so this only changes local state. Use --restore to undo.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			id := args[0]
			if restore {
				if err := localstore.RemoveFromSet(cc.Store, localstore.KeyDeletedNotifications, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Notification %s restored\n", id)
				return nil
			}
			if err := localstore.AddToSet(cc.Store, localstore.KeyDeletedNotifications, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Notification %s deleted\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&restore, "restore", false, "Show the notification again")
	return cmd
}
