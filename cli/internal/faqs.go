package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
)

// faq is the part of an FAQ entry the CLI renders
type faq struct {
	ID       string `json:"_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

func newFAQsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "faqs",
		Aliases: []string{"faq"},
		Short:   "Read and manage frequently asked questions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List FAQs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.FAQs.List(ctx)
			})
		},
	})
	cmd.AddCommand(newFAQShowCommand())
	cmd.AddCommand(newDataCommand("create", "Create an FAQ", func(ctx context.Context, a *api.API, body any) (*client.Response, error) {
		return a.FAQs.Create(ctx, body)
	}))
	cmd.AddCommand(newIDDataCommand("update FAQ_ID", "Update an FAQ", func(ctx context.Context, a *api.API, id string, body any) (*client.Response, error) {
		return a.FAQs.Update(ctx, id, body)
	}))
	cmd.AddCommand(newIDCommand("delete FAQ_ID", "Delete an FAQ", func(ctx context.Context, a *api.API, id string) (*client.Response, error) {
		return a.FAQs.Delete(ctx, id)
	}))

	return cmd
}

func newFAQShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show FAQ_ID",
		Short: "Show an FAQ, rendered as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			resp, err := cc.API.FAQs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if cc.Output == "json" || !resp.JSON {
				return printResponse(cmd.OutOrStdout(), cc.Output, resp)
			}

			entry, err := decodeFAQ(resp)
			if err != nil || entry.Question == "" {
				return printResponse(cmd.OutOrStdout(), cc.Output, resp)
			}
			return printMarkdown(cmd, faqMarkdown(entry))
		},
	}
}

// decodeFAQ reads an FAQ from a bare object or one wrapped as {"faq": {...}}
func decodeFAQ(resp *client.Response) (*faq, error) {
	var wrapped struct {
		FAQ *faq `json:"faq"`
	}
	if err := resp.Decode(&wrapped); err == nil && wrapped.FAQ != nil {
		return wrapped.FAQ, nil
	}
	var entry faq
	if err := json.Unmarshal(resp.Body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func faqMarkdown(entry *faq) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(entry.Question))
	if entry.Category != "" {
		fmt.Fprintf(&b, "_%s_\n\n", entry.Category)
	}
	b.WriteString(strings.TrimSpace(entry.Answer))
	b.WriteString("\n")
	return b.String()
}
