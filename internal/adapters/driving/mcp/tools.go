package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/nexus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nexus-cli/internal/repair"
)

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents one library entry.
type DocumentOutput struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SizeBytes    int64  `json:"size_bytes"`
	RepairStatus string `json:"repair_status"`
	RepairRules  int    `json:"repair_rules"`
}

// SearchInput is the input schema for the search_document tool.
type SearchInput struct {
	DocumentID int64  `json:"document_id" jsonschema:"the ID of the document to search in"`
	Query      string `json:"query" jsonschema:"the search query"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of snippets to return (default 5)"`
}

// SearchOutput is the output schema for the search_document tool.
type SearchOutput struct {
	Snippets []SnippetOutput `json:"snippets"`
	Count    int             `json:"count"`
}

// SnippetOutput is a single matching snippet with its page number.
type SnippetOutput struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// AskInput is the input schema for the ask_document tool.
type AskInput struct {
	DocumentID int64  `json:"document_id" jsonschema:"the ID of the document to ask about"`
	Question   string `json:"question" jsonschema:"the question to answer from the document"`
}

// AskOutput is the output schema for the ask_document tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the imported documents in the library",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_document",
		Description: "Full-text search inside one imported document",
	}, s.handleSearchDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_document",
		Description: "Answer a question using retrieved context from one imported document",
	}, s.handleAskDocument)
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:           docs[i].ID,
			Name:         docs[i].Name,
			SizeBytes:    docs[i].Size,
			RepairStatus: string(docs[i].DiscoveryStatus),
			RepairRules:  len(docs[i].RepairMap),
		}
	}
	return nil, output, nil
}

// handleSearchDocument handles the search_document tool invocation. The
// document is opened first so the working-set index holds its chunks.
func (s *Server) handleSearchDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	doc, _, err := s.ports.Library.Open(ctx, input.DocumentID)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("opening document %d: %w", input.DocumentID, err)
	}

	chunks := s.ports.Retrieve.Retrieve(ctx, input.Query, doc.ID, limit)
	output := SearchOutput{
		Snippets: make([]SnippetOutput, len(chunks)),
		Count:    len(chunks),
	}
	for i, c := range chunks {
		output.Snippets[i] = SnippetOutput{
			Page: c.PageIndex + 1,
			Text: repair.Apply(c.Text, doc.RepairMap),
		}
	}
	return nil, output, nil
}

// handleAskDocument handles the ask_document tool invocation.
func (s *Server) handleAskDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	doc, _, err := s.ports.Library.Open(ctx, input.DocumentID)
	if err != nil {
		return nil, AskOutput{}, fmt.Errorf("opening document %d: %w", input.DocumentID, err)
	}

	answer, err := s.ports.Ask.Ask(ctx, doc, input.Question, driving.AskOptions{
		UseDocContext: true,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer}, nil
}
