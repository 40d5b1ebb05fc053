package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
	"github.com/devilmonastery/biniq/internal/pkg/textutil"
)

// maxCellWidth bounds table cells in text output
const maxCellWidth = 48

var (
	errDataNotObject = errors.New("--data must be a JSON object")
	errMissingTier   = errors.New("a tier is required (--tier or \"tier\" in --data)")
)

// labelFields are tried in order to pick a human-readable column for list output
var labelFields = []string{"name", "title", "question", "email", "message", "tier", "comment"}

// ErrorMessage turns an error into the single line shown to the user.
// API, timeout and network failures get user-facing copy; local errors are shown as-is.
func ErrorMessage(err error) string {
	var apiErr *client.APIError
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	case errors.As(err, &apiErr),
		errors.Is(err, client.ErrRequestTimeout),
		errors.As(err, &urlErr):
		slog.Debug("request failed", slog.String("component", "cli"), slog.String("error", err.Error()))
		return client.UserMessage(err)
	default:
		return err.Error()
	}
}

// apiCall is one request made through the resource wrappers
type apiCall func(ctx context.Context, a *api.API) (*client.Response, error)

// runAPI performs call and prints its response
func runAPI(cmd *cobra.Command, call apiCall) error {
	cc := getCliContext(cmd)
	resp, err := call(cmd.Context(), cc.API)
	if err != nil {
		return err
	}
	return printResponse(cmd.OutOrStdout(), cc.Output, resp)
}

// printResponse writes resp in the requested format
func printResponse(w io.Writer, format string, resp *client.Response) error {
	if !resp.JSON {
		_, err := fmt.Fprintln(w, resp.Text())
		return err
	}
	if format == "json" {
		return printJSON(w, resp.Body)
	}
	return printValue(w, resp.Value())
}

func printJSON(w io.Writer, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		_, err := fmt.Fprintln(w, "null")
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

// printJSONValue writes v as indented JSON
func printJSONValue(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// printValue renders a decoded JSON value as text: arrays of objects become a table,
// objects become aligned key/value lines. A single wrapping object key holding an
// array (e.g. {"products": [...]}) is unwrapped.
func printValue(w io.Writer, v any) error {
	switch val := v.(type) {
	case nil:
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	case []any:
		return printTable(w, val)
	case map[string]any:
		if list, ok := soleList(val); ok {
			return printTable(w, list)
		}
		return printObject(w, val)
	default:
		_, err := fmt.Fprintln(w, cellString(val))
		return err
	}
}

// soleList returns the array of an object whose only array-valued field is that array
func soleList(obj map[string]any) ([]any, bool) {
	var found []any
	count := 0
	for _, v := range obj {
		if list, ok := v.([]any); ok {
			found = list
			count++
		}
	}
	return found, count == 1 && len(obj) <= 3
}

func printObject(w io.Writer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s:\t%s\n", k, cellString(obj[k]))
	}
	return tw.Flush()
}

func printTable(w io.Writer, list []any) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No results")
		return err
	}

	first, ok := list[0].(map[string]any)
	if !ok {
		for _, item := range list {
			fmt.Fprintln(w, cellString(item))
		}
		return nil
	}

	columns := tableColumns(first)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(columns, "\t")))
	for _, item := range list {
		obj, _ := item.(map[string]any)
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = textutil.Truncate(cellString(obj[col]), maxCellWidth)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// tableColumns picks the id column, one label column and up to two scalar extras
func tableColumns(obj map[string]any) []string {
	var columns []string
	if _, ok := obj["_id"]; ok {
		columns = append(columns, "_id")
	}
	for _, f := range labelFields {
		if _, ok := obj[f]; ok {
			columns = append(columns, f)
			break
		}
	}

	var extras []string
	for k, v := range obj {
		if strings.HasPrefix(k, "_") || slices.Contains(columns, k) {
			continue
		}
		switch v.(type) {
		case string, float64, bool:
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	if len(extras) > 2 {
		extras = extras[:2]
	}
	columns = append(columns, extras...)
	if len(columns) == 0 {
		columns = append(columns, "value")
	}
	return columns
}

// cellString formats one value for text output
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return textutil.PlainText(val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

// parseData reads a --data value: inline JSON, @file, or @- for stdin
func parseData(data string, stdin io.Reader) (any, error) {
	if data == "" {
		return nil, nil
	}

	raw := []byte(data)
	if strings.HasPrefix(data, "@") {
		var err error
		if data == "@-" {
			raw, err = io.ReadAll(stdin)
		} else {
			raw, err = os.ReadFile(data[1:])
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data: %w", err)
		}
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("--data is not valid JSON: %w", err)
	}
	return v, nil
}

// parseObject is parseData for bodies that must be objects; an empty value gives an empty map
func parseObject(data string, stdin io.Reader) (map[string]any, error) {
	parsed, err := parseData(data, stdin)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return map[string]any{}, nil
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, errDataNotObject
	}
	return obj, nil
}

// parseParams turns repeated key=value flags into query parameters
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", pair)
		}
		params[key] = value
	}
	return params, nil
}

// addDataFlag registers --data on cmd
func addDataFlag(cmd *cobra.Command, data *string, required bool) {
	cmd.Flags().StringVarP(data, "data", "d", "", "Request body as JSON, @file, or @- for stdin")
	if required {
		_ = cmd.MarkFlagRequired("data")
	}
}

// addParamFlag registers repeated --param on cmd
func addParamFlag(cmd *cobra.Command, params *[]string) {
	cmd.Flags().StringArrayVarP(params, "param", "p", nil, "Query parameter as key=value (repeatable)")
}

// newIDCommand builds a command that takes one id argument
func newIDCommand(use, short string, call func(context.Context, *api.API, string) (*client.Response, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return call(ctx, a, args[0])
			})
		},
	}
}

// newDataCommand builds a command that sends a required --data body
func newDataCommand(use, short string, call func(context.Context, *api.API, any) (*client.Response, error)) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseData(data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return call(ctx, a, body)
			})
		},
	}
	addDataFlag(cmd, &data, true)
	return cmd
}

// newIDDataCommand builds a command that takes one id argument and a required --data body
func newIDDataCommand(use, short string, call func(context.Context, *api.API, string, any) (*client.Response, error)) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseData(data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return call(ctx, a, args[0], body)
			})
		},
	}
	addDataFlag(cmd, &data, true)
	return cmd
}

// newParamsCommand builds a list command that accepts repeated --param
func newParamsCommand(use, short string, call func(context.Context, *api.API, map[string]any) (*client.Response, error)) *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return call(ctx, a, query)
			})
		},
	}
	addParamFlag(cmd, &params)
	return cmd
}
