package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nexus-cli/internal/logger"
)

// DefaultRetrieveLimit is the number of chunks returned when the caller
// does not specify a limit.
const DefaultRetrieveLimit = 5

// Indexer wraps the full-text engine as a single-document working set:
// indexing a document discards whatever was indexed before.
type Indexer struct {
	engine driven.SearchEngine
}

// NewIndexer creates an indexer backed by the given engine. A nil engine
// degrades every operation to "no context available".
func NewIndexer(engine driven.SearchEngine) *Indexer {
	return &Indexer{engine: engine}
}

// IndexDocument resets the index and bulk-inserts the document's chunks.
// Subsequent Retrieve calls see this data.
func (i *Indexer) IndexDocument(ctx context.Context, documentID int64, chunks []domain.Chunk) error {
	if i.engine == nil {
		return domain.ErrSearchUnavailable
	}
	if err := i.engine.Reset(ctx); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := i.engine.IndexChunks(ctx, chunks); err != nil {
		return fmt.Errorf("indexing %d chunks for document %d: %w", len(chunks), documentID, err)
	}
	logger.Debug("Indexed %d chunks for document %d", len(chunks), documentID)
	return nil
}

// Retrieve returns the top chunks matching the query for one document.
// Retrieval is always best-effort: an empty query, a missing engine, or
// any engine error yields an empty result rather than failing the caller.
func (i *Indexer) Retrieve(ctx context.Context, query string, documentID int64, limit int) []domain.Chunk {
	query = strings.TrimSpace(query)
	if query == "" || i.engine == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}

	hits, err := i.engine.Search(ctx, query, limit)
	if err != nil {
		logger.Warn("Search failed for %q: %v", query, err)
		return nil
	}

	// Hits from another document would mean the working set was not reset
	// between opens. Filter them out rather than leaking cross-document text.
	chunks := make([]domain.Chunk, 0, len(hits))
	for _, h := range hits {
		if h.DocumentID != documentID {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			DocumentID: h.DocumentID,
			PageIndex:  h.PageIndex,
			Text:       h.Text,
		})
	}
	logger.Debug("Retrieved %d chunks for %q", len(chunks), query)
	return chunks
}
