package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the DocBrain server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The login surface is active: an expired stored record must
			// not trigger a renewal attempt underneath the prompt.
			app.session.SetLoginSurface(true)
			defer app.session.SetLoginSurface(false)

			reader := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email == "" {
				if email, err = promptLine(cmd, reader, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptLine(cmd, reader, "Password: "); err != nil {
					return err
				}
			}

			if err := app.session.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			app.session.Stop()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when empty)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.session.SetLoginSurface(true)
			defer app.session.SetLoginSurface(false)

			app.session.Logout(cmd.Context())
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func promptLine(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
