package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and account status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			record, err := app.store.Load(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrNoCredentials) {
					_, _ = fmt.Fprintln(out, "Session: not logged in")
					return nil
				}
				return fmt.Errorf("load credentials: %w", err)
			}

			now := app.now()
			switch {
			case !record.Complete():
				_, _ = fmt.Fprintln(out, "Session: incomplete credentials, log in again")
				return nil
			case record.Expired(now):
				_, _ = fmt.Fprintln(out, "Session: expired, will renew on next use")
			default:
				_, _ = fmt.Fprintf(out, "Session: valid for %s (until %s)\n",
					record.ExpiresAt.Sub(now).Round(time.Second),
					record.ExpiresAt.Local().Format("15:04:05"))
			}

			user, err := app.client.Users().Current(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					_, _ = fmt.Fprintln(out, "Account: unauthorized, log in again")
					return nil
				}
				return fmt.Errorf("fetch current user: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Account: %s (%s)\n", user.Email, user.Role)
			return nil
		},
	}
}
