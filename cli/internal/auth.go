package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
	"github.com/devilmonastery/biniq/internal/pkg/timeutil"
)

// formatDuration formats a duration in a human-friendly way (e.g., "2 days, 3 hours and 45 minutes")
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 && seconds > 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	switch len(parts) {
	case 0:
		return "0 seconds"
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Sign in, sign out and recover access to a BinIQ account`,
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthRegisterCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())
	cmd.AddCommand(newAuthTokenCommand())
	cmd.AddCommand(newAuthForgotPasswordCommand())
	cmd.AddCommand(newAuthVerifyOTPCommand())
	cmd.AddCommand(newAuthResetPasswordCommand())
	cmd.AddCommand(newAuthChangePasswordCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to BinIQ",
		Long: `Authenticate with email and password. The token is stored in the local state
file of the current context and sent with every later request.

Examples:
  # Prompt for credentials
  biniq auth login

  # Login against the dev context
  biniq --context dev auth login --email owner@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)

			if email == "" || password == "" {
				var err error
				email, password, err = promptCredentials(cmd, email)
				if err != nil {
					return err
				}
			}

			cc.Logger.Info("Starting login", "email", email)
			resp, err := cc.API.Auth.Login(cmd.Context(), map[string]string{
				"email":    email,
				"password": password,
			})
			if err != nil {
				return err
			}
			if cc.Client.GetAuthToken() == "" {
				return errors.New("login succeeded but the server returned no token")
			}

			name := resp.NestedString("user", "email")
			if name == "" {
				name = email
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Successfully logged in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (if not provided, will prompt)")
	cmd.Flags().StringVar(&password, "password", "", "Password (if not provided, will prompt)")

	return cmd
}

func newAuthRegisterCommand() *cobra.Command {
	var (
		name  string
		email string
		role  string
		data  string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a BinIQ account",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseObject(data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			setIfNotEmpty(body, "full_name", name)
			setIfNotEmpty(body, "email", email)
			setIfNotEmpty(body, "role", role)

			if _, ok := body["password"]; !ok {
				password, err := promptPassword(cmd, "Password: ")
				if err != nil {
					return err
				}
				body["password"] = password
			}

			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Auth.Register(ctx, body)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVar(&role, "role", "", "Account role (e.g. reseller, store_owner)")
	addDataFlag(cmd, &data, false)

	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			cc.API.Auth.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			out := cmd.OutOrStdout()

			token := cc.Client.GetAuthToken()
			if token == "" {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			fmt.Fprintf(out, "Context: %s (%s)\n", cc.ContextName, cc.Client.BaseURL())
			info, err := inspectToken(token)
			if err != nil {
				fmt.Fprintln(out, "Logged in (token details unavailable)")
				return nil
			}

			if info.Email != "" {
				fmt.Fprintf(out, "Logged in as: %s\n", info.Email)
			}
			if info.Subject != "" {
				fmt.Fprintf(out, "User ID: %s\n", info.Subject)
			}
			if info.Role != "" {
				fmt.Fprintf(out, "Role: %s\n", info.Role)
			}
			if info.ExpiresAt.IsZero() {
				fmt.Fprintln(out, "Token has no expiry")
				return nil
			}

			fmt.Fprintf(out, "Token expires: %s\n", timeutil.FormatIn(info.ExpiresAt, cc.Context.Rendering.Timezone))

			now := time.Now()
			if info.IsExpired() {
				fmt.Fprintf(out, "⚠  Token expired %s ago - run 'biniq auth login' again\n", formatDuration(now.Sub(info.ExpiresAt)))
			} else {
				fmt.Fprintf(out, "✓  Valid for %s\n", formatDuration(info.ExpiresAt.Sub(now)))
			}
			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Display the current access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := getCliContext(cmd).Client.GetAuthToken()
			if token == "" {
				return errors.New("not logged in")
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newAuthForgotPasswordCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Send a password reset code by email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Auth.ForgotPassword(ctx, map[string]string{"email": email})
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAuthVerifyOTPCommand() *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:   "verify-otp",
		Short: "Verify a password reset code",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Auth.VerifyOTP(ctx, map[string]string{"email": email, "otp": otp})
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVar(&otp, "otp", "", "Code received by email")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("otp")
	return cmd
}

func newAuthResetPasswordCommand() *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using a verified reset code",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd, "New password: ")
			if err != nil {
				return err
			}
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Auth.ResetPassword(ctx, map[string]string{
					"email":       email,
					"otp":         otp,
					"newPassword": password,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVar(&otp, "otp", "", "Verified reset code")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAuthChangePasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "change-password",
		Short: "Change the password of the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := promptPassword(cmd, "Current password: ")
			if err != nil {
				return err
			}
			next, err := promptPassword(cmd, "New password: ")
			if err != nil {
				return err
			}
			return runAPI(cmd, func(ctx context.Context, a *api.API) (*client.Response, error) {
				return a.Users.ChangePassword(ctx, map[string]string{
					"currentPassword": current,
					"newPassword":     next,
				})
			})
		},
	}
}

func setIfNotEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func promptCredentials(cmd *cobra.Command, email string) (string, string, error) {
	out := cmd.ErrOrStderr()
	if email == "" {
		fmt.Fprint(out, "Email: ")
		line, err := stdinReader(cmd).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
		if email == "" {
			return "", "", errors.New("email is required")
		}
	}

	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// promptPassword reads a password without echo when stdin is a terminal,
// otherwise it reads one line (for scripts and tests)
func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	out := cmd.ErrOrStderr()
	fmt.Fprint(out, prompt)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		passwordBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out) // newline after password input
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(passwordBytes), nil
	}

	line, err := stdinReader(cmd).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

// stdinReader returns the buffered stdin shared by all prompts of one invocation
func stdinReader(cmd *cobra.Command) *bufio.Reader {
	cc := getCliContext(cmd)
	if cc.stdin == nil {
		cc.stdin = bufio.NewReader(cmd.InOrStdin())
	}
	return cc.stdin
}
