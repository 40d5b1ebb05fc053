package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
)

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer user accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "approve USER_ID",
		Short: "Approve a pending account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Users.Approve(ctx, args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reject USER_ID",
		Short: "Reject a pending account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Users.Reject(ctx, args[0])
			})
		},
	})

	return cmd
}

func newFeedbackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Read, submit and answer feedback",
	}

	var params []string
	list := &cobra.Command{
		Use:   "list",
		Short: "List feedback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Users.Feedback(ctx, query)
			})
		},
	}
	addParamFlag(list, &params)

	var message string
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Send feedback to the BinIQ team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Users.SubmitFeedback(ctx, map[string]string{"message": message})
			})
		},
	}
	submit.Flags().StringVarP(&message, "message", "m", "", "Feedback text")
	_ = submit.MarkFlagRequired("message")

	var reply string
	replyCmd := &cobra.Command{
		Use:   "reply FEEDBACK_ID",
		Short: "Reply to feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Users.ReplyFeedback(ctx, map[string]string{
					"feedback_id": args[0],
					"reply":       reply,
				})
			})
		},
	}
	replyCmd.Flags().StringVarP(&reply, "message", "m", "", "Reply text")
	_ = replyCmd.MarkFlagRequired("message")

	cmd.AddCommand(list, submit, replyCmd)
	return cmd
}
