package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "docbrain",
		Short:         "DocBrain CLI: chat with your document knowledge bases",
		Long:          "docbrain manages knowledge bases, ingests documents and curated questions, tracks their processing, and opens an interactive chat grounded in their content.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newChatCmd(app),
		newKnowledgeBaseCmd(app),
		newDocumentCmd(app),
		newQuestionCmd(app),
		newStatusCmd(app),
	)

	return rootCmd
}
