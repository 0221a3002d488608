package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newKnowledgeBaseCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Manage knowledge bases",
	}

	cmd.AddCommand(
		newKnowledgeBaseListCmd(app),
		newKnowledgeBaseCreateCmd(app),
		newKnowledgeBaseGetCmd(app),
		newKnowledgeBaseRenameCmd(app),
		newKnowledgeBaseDeleteCmd(app),
	)

	return cmd
}

func newKnowledgeBaseListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List knowledge bases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireAuth(cmd.Context()); err != nil {
				return err
			}

			bases, err := app.client.KnowledgeBases().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list knowledge bases: %w", err)
			}
			if len(bases) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No knowledge bases.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, kb := range bases {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", kb.ID, kb.Name, kb.Description)
			}
			return w.Flush()
		},
	}
}

func newKnowledgeBaseCreateCmd(app *app) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a knowledge base",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermCreateKnowledgeBase); err != nil {
				return err
			}

			kb, err := app.client.KnowledgeBases().Create(cmd.Context(), name, description)
			if err != nil {
				return fmt.Errorf("create knowledge base: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created knowledge base %s (%s)\n", kb.Name, kb.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Knowledge base name")
	cmd.Flags().StringVar(&description, "description", "", "Knowledge base description")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newKnowledgeBaseGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(cmd.Context()); err != nil {
				return err
			}

			kb, err := app.client.KnowledgeBases().Get(cmd.Context(), domain.KnowledgeBaseID(args[0]))
			if err != nil {
				return fmt.Errorf("get knowledge base: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "ID:          %s\n", kb.ID)
			_, _ = fmt.Fprintf(out, "Name:        %s\n", kb.Name)
			_, _ = fmt.Fprintf(out, "Description: %s\n", kb.Description)
			_, _ = fmt.Fprintf(out, "Created:     %s\n", kb.CreatedAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func newKnowledgeBaseRenameCmd(app *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "rename <id>",
		Short: "Rename a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermUpdateKnowledgeBase); err != nil {
				return err
			}

			kb, err := app.client.KnowledgeBases().Rename(cmd.Context(), domain.KnowledgeBaseID(args[0]), name)
			if err != nil {
				return fmt.Errorf("rename knowledge base: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Renamed knowledge base %s to %s\n", kb.ID, kb.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New knowledge base name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newKnowledgeBaseDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermDeleteKnowledgeBase); err != nil {
				return err
			}

			if err := app.client.KnowledgeBases().Delete(cmd.Context(), domain.KnowledgeBaseID(args[0])); err != nil {
				return fmt.Errorf("delete knowledge base: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted knowledge base %s\n", args[0])
			return nil
		},
	}
}
