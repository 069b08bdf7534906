package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driving"
)

var (
	askNoRAG bool
	askWeb   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a one-shot question about a document",
	Long: `Answers a single question using retrieved context from the document.
The answer streams to stdout as it is generated.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askNoRAG, "no-rag", false, "answer without document context")
	askCmd.Flags().BoolVar(&askWeb, "web", false, "augment with web search results")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}
	question := strings.Join(args[1:], " ")

	ctx := context.Background()
	doc, _, err := libraryService.Open(ctx, id)
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}

	useDoc, useWeb := resolveRetrieval(cmd, askNoRAG, askWeb)

	// Stream the answer by printing only the newly generated suffix of
	// each published increment.
	var printed int
	_, err = askService.Ask(ctx, doc, question, driving.AskOptions{
		UseDocContext: useDoc,
		UseWebSearch:  useWeb,
		OnDelta: func(soFar string) {
			cmd.Print(soFar[printed:])
			printed = len(soFar)
		},
	})
	if err != nil {
		if errors.Is(err, domain.ErrModelNotReady) {
			return errors.New("the model is not ready; is Ollama running?")
		}
		return fmt.Errorf("ask failed: %w", err)
	}
	cmd.Println()
	return nil
}
