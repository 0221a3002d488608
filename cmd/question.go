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

func newQuestionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question",
		Short: "Manage curated question/answer pairs",
	}

	cmd.AddCommand(
		newQuestionAddCmd(app),
		newQuestionListCmd(app),
		newQuestionRetryCmd(app),
		newQuestionImportCmd(app),
	)

	return cmd
}

func newQuestionAddCmd(app *app) *cobra.Command {
	var kbID, question, answer string
	var watch bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a curated question/answer pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermCreateQuestion); err != nil {
				return err
			}

			kb := domain.KnowledgeBaseID(kbID)
			created, err := app.client.Questions().Create(cmd.Context(), kb, question, answer)
			if err != nil {
				return fmt.Errorf("create question: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added question %s (%s)\n", created.ID, created.Status)

			if watch {
				return watchQuestion(cmd, app, kb, created.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kbID, "kb", "", "Knowledge base ID")
	cmd.Flags().StringVar(&question, "question", "", "Question text")
	cmd.Flags().StringVar(&answer, "answer", "", "Answer text")
	cmd.Flags().BoolVar(&watch, "watch", false, "Poll until processing finishes")
	_ = cmd.MarkFlagRequired("kb")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("answer")

	return cmd
}

func newQuestionListCmd(app *app) *cobra.Command {
	var kbID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List curated questions in a knowledge base",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermViewQuestions); err != nil {
				return err
			}

			questions, err := app.client.Questions().List(cmd.Context(), domain.KnowledgeBaseID(kbID))
			if err != nil {
				return fmt.Errorf("list questions: %w", err)
			}
			if len(questions) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No questions.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tQUESTION\tSTATUS\tERROR")
			for _, q := range questions {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", q.ID, q.Question, q.Status, q.ErrorMessage)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&kbID, "kb", "", "Knowledge base ID")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func newQuestionRetryCmd(app *app) *cobra.Command {
	var kbID string
	var watch bool

	cmd := &cobra.Command{
		Use:   "retry <id>",
		Short: "Retry a failed question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermCreateQuestion); err != nil {
				return err
			}

			kb := domain.KnowledgeBaseID(kbID)
			retried, err := app.client.Questions().Retry(cmd.Context(), kb, domain.ResourceID(args[0]))
			if err != nil {
				return fmt.Errorf("retry question: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Retrying question %s (%s)\n", retried.ID, retried.Status)

			if watch {
				return watchQuestion(cmd, app, kb, retried.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kbID, "kb", "", "Knowledge base ID")
	cmd.Flags().BoolVar(&watch, "watch", false, "Poll until processing finishes")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func newQuestionImportCmd(app *app) *cobra.Command {
	var kbID string

	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Bulk-import question/answer pairs from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePermission(cmd.Context(), domain.PermCreateQuestion); err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer func() { _ = file.Close() }()

			report, err := app.client.Questions().BulkUpload(cmd.Context(), domain.KnowledgeBaseID(kbID), filepath.Base(args[0]), file)
			if err != nil {
				return fmt.Errorf("bulk upload questions: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Submitted %d questions, %d rejected\n", report.Submitted, report.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&kbID, "kb", "", "Knowledge base ID")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func watchQuestion(cmd *cobra.Command, app *app, kb domain.KnowledgeBaseID, id domain.ResourceID) error {
	fetch := func(ctx context.Context, id domain.ResourceID) (domain.TrackedResource, error) {
		return app.client.Questions().Status(ctx, kb, id)
	}

	final, err := app.poller.PollUntilTerminal(cmd.Context(), id, fetch, application.TerminalStatus,
		func(resource domain.TrackedResource) {
			printResource(cmd, resource)
		})
	if err != nil {
		return err
	}
	if final.Status == domain.ResourceFailed {
		return fmt.Errorf("question %s failed: %s", final.ID, final.ErrorMessage)
	}
	return nil
}
