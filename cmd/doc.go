package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/bnema/docbrain-cli/internal/application"
	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newDocumentCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Manage knowledge base documents",
	}

	cmd.AddCommand(
		newDocumentUploadCmd(app),
		newDocumentListCmd(app),
		newDocumentStatusCmd(app),
		newDocumentRetryCmd(app),
		newDocumentDeleteCmd(app),
	)

	return cmd
}

func newDocumentUploadCmd(app *app) *cobra.Command {
	var kbID string
	var watch bool

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload documents for ingestion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermUploadDocument); err != nil {
				return err
			}

			kb := domain.KnowledgeBaseID(kbID)
			for _, path := range args {
				doc, err := uploadDocument(cmd.Context(), app, kb, path)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as %s (%s)\n", path, doc.Title, doc.Status)

				if watch {
					if err := watchDocument(cmd, app, kb, doc.ID); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kbID, "kb", "", "Knowledge base ID")
	cmd.Flags().BoolVar(&watch, "watch", false, "Poll until processing finishes")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func newDocumentListCmd(app *app) *cobra.Command {
	var kbID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents in a knowledge base",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermViewDocuments); err != nil {
				return err
			}

			documents, err := app.client.Documents().List(cmd.Context(), domain.KnowledgeBaseID(kbID))
			if err != nil {
				return fmt.Errorf("list documents: %w", err)
			}
			if len(documents) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No documents.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCHUNKS\tERROR")
			for _, doc := range documents {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					doc.ID, doc.Title, doc.Status, doc.ProcessedChunks, doc.ErrorMessage)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&kbID, "kb", "", "Knowledge base ID")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func newDocumentStatusCmd(app *app) *cobra.Command {
	var kbID string
	var watch bool

	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Show a document's processing status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermViewDocuments); err != nil {
				return err
			}

			kb := domain.KnowledgeBaseID(kbID)
			id := domain.ResourceID(args[0])
			if watch {
				return watchDocument(cmd, app, kb, id)
			}

			resource, err := app.client.Documents().Status(cmd.Context(), kb, id)
			if err != nil {
				return fmt.Errorf("fetch document status: %w", err)
			}
			printResource(cmd, resource)
			return nil
		},
	}

	cmd.Flags().StringVar(&kbID, "kb", "", "Knowledge base ID")
	cmd.Flags().BoolVar(&watch, "watch", false, "Poll until processing finishes")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func newDocumentRetryCmd(app *app) *cobra.Command {
	var kbID string
	var watch bool

	cmd := &cobra.Command{
		Use:   "retry <id>",
		Short: "Retry a failed document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermUploadDocument); err != nil {
				return err
			}

			kb := domain.KnowledgeBaseID(kbID)
			doc, err := app.client.Documents().Retry(cmd.Context(), kb, domain.ResourceID(args[0]))
			if err != nil {
				return fmt.Errorf("retry document: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Retrying %s (%s)\n", doc.Title, doc.Status)

			if watch {
				return watchDocument(cmd, app, kb, doc.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kbID, "kb", "", "Knowledge base ID")
	cmd.Flags().BoolVar(&watch, "watch", false, "Poll until processing finishes")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func newDocumentDeleteCmd(app *app) *cobra.Command {
	var kbID string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermDeleteDocument); err != nil {
				return err
			}

			if err := app.client.Documents().Delete(cmd.Context(), domain.KnowledgeBaseID(kbID), domain.ResourceID(args[0])); err != nil {
				return fmt.Errorf("delete document: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted document %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&kbID, "kb", "", "Knowledge base ID")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func uploadDocument(ctx context.Context, app *app, kb domain.KnowledgeBaseID, path string) (domain.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	doc, err := app.client.Documents().Upload(ctx, kb, filepath.Base(path), file)
	if err != nil {
		return domain.Document{}, fmt.Errorf("upload %s: %w", path, err)
	}
	return doc, nil
}

func watchDocument(cmd *cobra.Command, app *app, kb domain.KnowledgeBaseID, id domain.ResourceID) error {
	fetch := func(ctx context.Context, id domain.ResourceID) (domain.TrackedResource, error) {
		return app.client.Documents().Status(ctx, kb, id)
	}

	final, err := app.poller.PollUntilTerminal(cmd.Context(), id, fetch, application.TerminalStatus,
		func(resource domain.TrackedResource) {
			printResource(cmd, resource)
		})
	if err != nil {
		return err
	}
	if final.Status == domain.ResourceFailed {
		return fmt.Errorf("document %s failed: %s", final.ID, final.ErrorMessage)
	}
	return nil
}

func printResource(cmd *cobra.Command, resource domain.TrackedResource) {
	if resource.ErrorMessage != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", resource.ID, resource.Status, resource.ErrorMessage)
		return
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", resource.ID, resource.Status)
}
