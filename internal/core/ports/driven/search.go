package driven

import (
	"context"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

// SearchEngine is the full-text index collaborator. It is a
// single-document-at-a-time working set: Reset discards whatever was
// indexed before, and no persistence across process restarts is assumed.
type SearchEngine interface {
	// Reset discards the current index and prepares a fresh one.
	Reset(ctx context.Context) error

	// IndexChunks bulk-inserts chunks into the current index.
	IndexChunks(ctx context.Context, chunks []domain.Chunk) error

	// Search returns the top matching chunks for a term. Scoring is
	// entirely the engine's concern.
	Search(ctx context.Context, term string, limit int) ([]SearchHit, error)

	// Close releases resources.
	Close() error
}

// SearchHit is a single match returned by the engine, carrying back the
// original record fields.
type SearchHit struct {
	// DocumentID is the document the chunk belongs to.
	DocumentID int64

	// PageIndex is the zero-based page of the matched chunk.
	PageIndex int

	// Text is the chunk text.
	Text string

	// Score is the engine's relevance score.
	Score float64
}
