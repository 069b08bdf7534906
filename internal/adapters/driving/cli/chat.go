package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nexus-cli/internal/adapters/driving/tui"
)

var (
	chatNoRAG bool
	chatWeb   bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [doc-id]",
	Short: "Open an interactive chat session for a document",
	Long: `Opens a full-screen chat session. Answers stream into the transcript,
and repair discovery runs in the background on first open of a document
that has not been analysed yet.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNoRAG, "no-rag", false, "answer without document context")
	chatCmd.Flags().BoolVar(&chatWeb, "web", false, "augment with web search results")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}

	doc, chunks, err := libraryService.Open(context.Background(), id)
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}

	useDoc, useWeb := resolveRetrieval(cmd, chatNoRAG, chatWeb)

	return tui.Run(tui.Config{
		Doc:           doc,
		Chunks:        chunks,
		Ask:           askService,
		Discovery:     discoveryService,
		UseDocContext: useDoc,
		UseWebSearch:  useWeb,
	})
}
