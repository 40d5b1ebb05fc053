package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration and contexts",
		Long:  `Manage CLI configuration including API contexts, similar to kubectl contexts.`,
	}

	// Add subcommands
	cmd.AddCommand(newCurrentContextCommand())
	cmd.AddCommand(newUseContextCommand())
	cmd.AddCommand(newListContextsCommand())
	cmd.AddCommand(newAddContextCommand())
	cmd.AddCommand(newDeleteContextCommand())
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// current-context command
func newCurrentContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Display the current context",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), config.CurrentContext)
			return nil
		},
	}
}

// use-context command
func newUseContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use-context CONTEXT_NAME",
		Short: "Switch to a different context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextName := args[0]

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := config.SetCurrentContext(contextName); err != nil {
				return err
			}

			if err := SaveConfig(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q\n", contextName)
			return nil
		},
	}
}

// list-contexts command
func newListContextsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list-contexts",
		Aliases: []string{"get-contexts"},
		Short:   "List all available contexts",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if len(config.Contexts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No contexts configured")
				return nil
			}

			// Use tabwriter for aligned output
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "CURRENT\tNAME\tBASE URL\tTIMEOUT\tTHEME")

			for _, name := range config.ContextNames() {
				ctx := config.Contexts[name]
				current := " "
				if name == config.CurrentContext {
					current = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					current,
					name,
					ctx.API.BaseURL,
					ctx.API.Timeout,
					ctx.Rendering.Theme,
				)
			}
			return w.Flush()
		},
	}
}

// add-context command
func newAddContextCommand() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
		rps     float64
		burst   int
		retries uint64
		theme   string
		tz      string
	)

	cmd := &cobra.Command{
		Use:   "add-context CONTEXT_NAME",
		Short: "Add or update a context",
		Long: `Add or update a context.

Examples:
  biniq config add-context staging --base-url https://staging.biniq.example
  biniq config add-context local --base-url http://localhost:5000 --timeout 30s --retries 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextName := args[0]

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := NewContext(baseURL)
			if timeout > 0 {
				ctx.API.Timeout = timeout
			}
			ctx.API.RequestsPerSecond = rps
			ctx.API.Burst = burst
			ctx.API.Retries = retries
			ctx.Rendering.Theme = theme
			ctx.Rendering.Timezone = tz

			// Add or update the context
			config.AddContext(contextName, ctx)

			// If this is the first context, make it current
			if len(config.Contexts) == 1 {
				config.CurrentContext = contextName
			}

			if err := SaveConfig(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context %q added/updated\n", contextName)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Request timeout (default 2m0s)")
	cmd.Flags().Float64Var(&rps, "rps", 0, "Client-side request rate limit per second (0 disables)")
	cmd.Flags().IntVar(&burst, "burst", 0, "Rate limit burst")
	cmd.Flags().Uint64Var(&retries, "retries", 0, "Retries for idempotent requests on gateway errors")
	cmd.Flags().StringVar(&theme, "theme", "auto", "Markdown rendering theme")
	cmd.Flags().StringVar(&tz, "timezone", "", "IANA timezone for displayed times (default: local)")
	_ = cmd.MarkFlagRequired("base-url")

	return cmd
}

// delete-context command
func newDeleteContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context CONTEXT_NAME",
		Short: "Delete a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextName := args[0]

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := config.DeleteContext(contextName); err != nil {
				return err
			}

			if err := SaveConfig(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context %q deleted\n", contextName)
			return nil
		},
	}
}

// show command - shows the resolved current context
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current context configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			name := config.CurrentContext
			if contextFlag != "" {
				name = contextFlag
			}
			ctx, err := config.GetContext(name)
			if err != nil {
				return fmt.Errorf("failed to get context: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Context: %s\n", name)
			fmt.Fprintf(out, "  Base URL: %s\n", ctx.API.BaseURL)
			fmt.Fprintf(out, "  Timeout: %s\n", ctx.API.Timeout)
			if ctx.API.RequestsPerSecond > 0 {
				fmt.Fprintf(out, "  Rate Limit: %g/s (burst %d)\n", ctx.API.RequestsPerSecond, ctx.API.Burst)
			}
			if ctx.API.Retries > 0 {
				fmt.Fprintf(out, "  Retries: %d\n", ctx.API.Retries)
			}
			fmt.Fprintf(out, "  Glamour Theme: %s\n", ctx.Rendering.Theme)
			if ctx.Rendering.Timezone != "" {
				fmt.Fprintf(out, "  Timezone: %s\n", ctx.Rendering.Timezone)
			}

			configPath, _ := GetConfigPath()
			fmt.Fprintf(out, "  Config File: %s\n", configPath)
			statePath, _ := StatePath(name)
			fmt.Fprintf(out, "  State File: %s\n", statePath)

			return nil
		},
	}
}
