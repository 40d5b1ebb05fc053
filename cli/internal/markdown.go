package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// renderMarkdown renders markdown with glamour when out is a terminal, and returns it unchanged otherwise
func renderMarkdown(out io.Writer, markdown string, theme string) string {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return markdown
	}

	rendered, err := glamour.Render(markdown, theme)
	if err != nil {
		// Fall back to plain markdown if rendering fails
		return markdown
	}
	return rendered
}

// printMarkdown renders and prints markdown using the theme of the active context
func printMarkdown(cmd *cobra.Command, markdown string) error {
	out := cmd.OutOrStdout()
	rendered := renderMarkdown(out, markdown, getTheme(getCliContext(cmd).Context))
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	_, err := fmt.Fprint(out, rendered)
	return err
}

// getTheme returns the theme of ctx, or "auto" if there is none
func getTheme(ctx *Context) string {
	if ctx == nil || ctx.Rendering.Theme == "" {
		return "auto"
	}
	return ctx.Rendering.Theme
}
