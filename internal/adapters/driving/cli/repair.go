package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Manage text-repair maps",
	Long: `Inspect and manage the character-repair maps learned for documents
whose text extraction produced a broken font encoding.`,
}

var repairStatusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show a document's repair discovery status",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepairStatus,
}

var repairShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document's learned repair rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepairShow,
}

var repairResetCmd = &cobra.Command{
	Use:   "reset [doc-id]",
	Short: "Reset a failed discovery so it can run again",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepairReset,
}

var repairRunCmd = &cobra.Command{
	Use:   "run [doc-id]",
	Short: "Run repair discovery now and wait for it to finish",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepairRun,
}

func init() {
	repairCmd.AddCommand(repairStatusCmd)
	repairCmd.AddCommand(repairShowCmd)
	repairCmd.AddCommand(repairResetCmd)
	repairCmd.AddCommand(repairRunCmd)
	rootCmd.AddCommand(repairCmd)
}

func runRepairStatus(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	doc, err := getDocument(args[0])
	if err != nil {
		return err
	}

	status := doc.DiscoveryStatus
	if status == "" {
		status = domain.DiscoveryIdle
	}
	cmd.Printf("Document %d (%s)\n", doc.ID, doc.Name)
	cmd.Printf("  Status: %s\n", status)
	cmd.Printf("  Rules:  %d\n", len(doc.RepairMap))
	return nil
}

func runRepairShow(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	doc, err := getDocument(args[0])
	if err != nil {
		return err
	}

	if len(doc.RepairMap) == 0 {
		cmd.Println("No repair rules learned for this document.")
		return nil
	}

	keys := make([]string, 0, len(doc.RepairMap))
	for k := range doc.RepairMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd.Printf("%d repair rules:\n", len(keys))
	for _, k := range keys {
		cmd.Printf("  %q -> %q\n", k, doc.RepairMap[k])
	}
	return nil
}

func runRepairReset(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}
	if err := libraryService.ResetDiscovery(context.Background(), id); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Printf("Document %d discovery reset to idle\n", id)
	return nil
}

func runRepairRun(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	doc, chunks, err := libraryService.Open(ctx, id)
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("document %d has no extractable text", id)
	}
	if doc.DiscoveryStatus == domain.DiscoveryComplete {
		cmd.Printf("Discovery already complete (%d rules). Use 'nexus repair show %d'.\n", len(doc.RepairMap), id)
		return nil
	}

	if err := discoveryService.Start(ctx, doc, chunks); err != nil {
		return fmt.Errorf("starting discovery: %w", err)
	}
	cmd.Println("Learning repair rules...")

	for ev := range discoveryService.Events() {
		if ev.DocumentID != id {
			continue
		}
		if ev.Status == domain.DiscoveryFailed {
			return fmt.Errorf("discovery failed: %w", ev.Err)
		}
		cmd.Printf("Learned %d repair rules\n", ev.RulesLearned)
		return nil
	}
	return fmt.Errorf("discovery ended without a result")
}

func getDocument(arg string) (*domain.Document, error) {
	id, err := parseDocID(arg)
	if err != nil {
		return nil, err
	}
	docs, err := libraryService.List(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i], nil
		}
	}
	return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
}
