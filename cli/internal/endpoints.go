package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
)

func newEndpointsCommand() *cobra.Command {
	var showURL bool

	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "List the API endpoints the CLI knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			all := cc.API.Catalog.All()

			if cc.Output == "json" {
				type entry struct {
					Name   string   `json:"name"`
					Method string   `json:"method"`
					Path   string   `json:"path"`
					Params []string `json:"params,omitempty"`
				}
				entries := make([]entry, 0, len(all))
				for _, e := range all {
					entries = append(entries, entry{Name: e.Name, Method: e.Method, Path: e.Path, Params: e.Params()})
				}
				return printJSONValue(cmd.OutOrStdout(), entries)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tMETHOD\tPATH\tPARAMS")
			for _, e := range all {
				path := e.Path
				if showURL {
					path = strings.TrimRight(cc.API.Catalog.BaseURL(), "/") + e.Path
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Method, path, strings.Join(e.Params(), ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showURL, "url", false, "Show full URLs for the current context")
	cmd.AddCommand(newEndpointsCallCommand())
	return cmd
}

func newEndpointsCallCommand() *cobra.Command {
	var (
		data   string
		params []string
	)

	cmd := &cobra.Command{
		Use:   "call NAME [ID...]",
		Short: "Call any catalog endpoint by name",
		Long: `Call a catalog endpoint by its name, as listed by 'biniq endpoints'.
Identifiers fill the path segments in order. GET endpoints take --param,
the others take --data.

Examples:
  biniq endpoints call stats.quickStats
  biniq endpoints call products.getById 64f0c2
  biniq endpoints call stores.comment -d '{"store_id": "s1", "comment": "Great bins"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			e, ok := cc.API.Catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown endpoint %q (see 'biniq endpoints')", args[0])
			}

			var payload any
			if e.Method == http.MethodGet {
				query, err := parseParams(params)
				if err != nil {
					return err
				}
				if query != nil {
					payload = query
				}
			} else {
				body, err := parseData(data, cmd.InOrStdin())
				if err != nil {
					return err
				}
				payload = body
			}

			ids := args[1:]
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Call(ctx, e, payload, ids...)
			})
		},
	}

	addDataFlag(cmd, &data, false)
	addParamFlag(cmd, &params)
	return cmd
}
