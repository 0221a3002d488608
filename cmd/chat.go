package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/docbrain-cli/internal/adapters/render/chat"
	"github.com/bnema/docbrain-cli/internal/application"
	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/bnema/docbrain-cli/internal/ports"
	"github.com/spf13/cobra"
)

func newChatCmd(app *app) *cobra.Command {
	var kbID, title string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive conversation with a knowledge base",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Sign-out from any path, renewal failure included, ends the
			// surface instead of leaving it issuing doomed requests.
			session := app.newSession(application.WithSignedOutHandler(cancel))
			if !session.CheckAuthenticated(ctx) {
				return errNotLoggedIn
			}
			defer session.Stop()

			user, err := app.client.Users().Current(ctx)
			if err != nil {
				return fmt.Errorf("fetch current user: %w", err)
			}
			if !user.Role.Has(domain.PermConverse) {
				return fmt.Errorf("role %q lacks permission %s", user.Role, domain.PermConverse)
			}

			kb, err := app.client.KnowledgeBases().Get(ctx, domain.KnowledgeBaseID(kbID))
			if err != nil {
				return fmt.Errorf("fetch knowledge base: %w", err)
			}

			session.ScheduleRenewal(ctx, false)
			if err := session.FollowStore(ctx); err != nil {
				app.logger.Warn("credential store watch unavailable", "err", err)
			}

			activity := application.NewActivityTracker(app.activityWindow, ports.SystemClock{})
			engine := application.NewConversationService(
				app.client.Conversations(),
				activity,
				ports.SystemClock{},
				kb.ID,
				conversationTitle(title, kb),
				application.WithCadence(app.cadence),
				application.WithConversationLogger(app.logger),
			)

			return chat.Run(ctx, chat.Options{
				Session:  session,
				Engine:   engine,
				Activity: activity,
				User:     user,
				Title:    fmt.Sprintf("%s · %s", kb.Name, user.Email),
			})
		},
	}

	cmd.Flags().StringVar(&kbID, "kb", "", "Knowledge base ID")
	cmd.Flags().StringVar(&title, "title", "", "Conversation title (defaults to the knowledge base name)")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func conversationTitle(title string, kb domain.KnowledgeBase) string {
	if title != "" {
		return title
	}
	return fmt.Sprintf("Chat with %s", kb.Name)
}
