// Package bleve provides the full-text index adapter backed by an
// in-memory bleve index. The index is a per-session working set rebuilt
// on every document open; nothing persists across restarts.
package bleve

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Field names used in the index schema.
const (
	fieldDocumentID = "document_id"
	fieldPageIndex  = "page_index"
	fieldText       = "text"
)

// Engine is an in-memory bleve search engine.
type Engine struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewEngine creates an engine with an empty index.
func NewEngine() (*Engine, error) {
	index, err := newIndex()
	if err != nil {
		return nil, err
	}
	return &Engine{index: index}, nil
}

func newIndex() (bleve.Index, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return index, nil
}

// Reset discards the current index and prepares a fresh one.
func (e *Engine) Reset(_ context.Context) error {
	fresh, err := newIndex()
	if err != nil {
		return err
	}

	e.mu.Lock()
	old := e.index
	e.index = fresh
	e.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			return fmt.Errorf("closing previous index: %w", err)
		}
	}
	return nil
}

// IndexChunks bulk-inserts chunks into the current index.
func (e *Engine) IndexChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	e.mu.RLock()
	index := e.index
	e.mu.RUnlock()
	if index == nil {
		return domain.ErrSearchUnavailable
	}

	batch := index.NewBatch()
	for _, c := range chunks {
		err := batch.Index(c.ID, map[string]any{
			fieldDocumentID: c.DocumentID,
			fieldPageIndex:  c.PageIndex,
			fieldText:       c.Text,
		})
		if err != nil {
			return fmt.Errorf("adding chunk %s to batch: %w", c.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return fmt.Errorf("indexing batch: %w", err)
	}
	return nil
}

// Search returns the top matching chunks for a term.
func (e *Engine) Search(ctx context.Context, term string, limit int) ([]driven.SearchHit, error) {
	if limit <= 0 {
		limit = 10
	}

	e.mu.RLock()
	index := e.index
	e.mu.RUnlock()
	if index == nil {
		return nil, domain.ErrSearchUnavailable
	}

	query := bleve.NewMatchQuery(term)
	query.SetField(fieldText)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Fields = []string{fieldDocumentID, fieldPageIndex, fieldText}

	result, err := index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", term, err)
	}

	hits := make([]driven.SearchHit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hit := driven.SearchHit{Score: h.Score}
		if v, ok := h.Fields[fieldDocumentID].(float64); ok {
			hit.DocumentID = int64(v)
		}
		if v, ok := h.Fields[fieldPageIndex].(float64); ok {
			hit.PageIndex = int(v)
		}
		if v, ok := h.Fields[fieldText].(string); ok {
			hit.Text = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases the index.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index == nil {
		return nil
	}
	err := e.index.Close()
	e.index = nil
	return err
}
