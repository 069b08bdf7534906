package mcp

import (
	"context"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driving"
)

// Retriever returns the top chunks matching a query within one document.
// Satisfied by the core indexer service.
type Retriever interface {
	Retrieve(ctx context.Context, query string, documentID int64, limit int) []domain.Chunk
}

// Ports aggregates the services required by the MCP server. This provides
// a single injection point for dependency injection.
type Ports struct {
	// Library manages the document collection.
	Library driving.LibraryService

	// Ask answers questions about an open document.
	Ask driving.AskService

	// Retrieve serves document-context lookups for the search tool.
	Retrieve Retriever
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Retrieve == nil {
		return ErrMissingRetriever
	}
	return nil
}
