package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
)

func TestIndexDocumentResetsBeforeInserting(t *testing.T) {
	engine := &mockEngine{}
	idx := NewIndexer(engine)

	chunks := []domain.Chunk{
		{ID: "a", DocumentID: 1, PageIndex: 0, Text: "first page"},
		{ID: "b", DocumentID: 1, PageIndex: 1, Text: "second page"},
	}
	require.NoError(t, idx.IndexDocument(context.Background(), 1, chunks))

	assert.Equal(t, 1, engine.resetCalls)
	assert.Equal(t, 1, engine.indexCalls)
}

func TestIndexDocumentEmptyChunksOnlyResets(t *testing.T) {
	engine := &mockEngine{}
	idx := NewIndexer(engine)

	require.NoError(t, idx.IndexDocument(context.Background(), 1, nil))

	assert.Equal(t, 1, engine.resetCalls)
	assert.Zero(t, engine.indexCalls)
}

func TestIndexDocumentNilEngine(t *testing.T) {
	idx := NewIndexer(nil)
	err := idx.IndexDocument(context.Background(), 1, []domain.Chunk{{ID: "a"}})
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
}

func TestRetrieveGuardsEmptyQuery(t *testing.T) {
	engine := &mockEngine{}
	idx := NewIndexer(engine)

	assert.Empty(t, idx.Retrieve(context.Background(), "", 1, 5))
	assert.Empty(t, idx.Retrieve(context.Background(), "   \t\n", 1, 5))
	assert.Empty(t, engine.searchTerms, "empty queries must not reach the engine")
}

func TestRetrieveFiltersToDocument(t *testing.T) {
	engine := &mockEngine{
		searchFunc: func(ctx context.Context, term string, limit int) ([]driven.SearchHit, error) {
			return []driven.SearchHit{
				{DocumentID: 1, PageIndex: 0, Text: "mine", Score: 2.0},
				{DocumentID: 2, PageIndex: 3, Text: "someone else's", Score: 1.5},
				{DocumentID: 1, PageIndex: 4, Text: "also mine", Score: 1.0},
			}, nil
		},
	}
	idx := NewIndexer(engine)

	chunks := idx.Retrieve(context.Background(), "query", 1, 5)

	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.Equal(t, int64(1), c.DocumentID)
	}
}

func TestRetrieveEngineErrorDegradesToEmpty(t *testing.T) {
	engine := &mockEngine{
		searchFunc: func(ctx context.Context, term string, limit int) ([]driven.SearchHit, error) {
			return nil, errors.New("index unavailable")
		},
	}
	idx := NewIndexer(engine)

	assert.Empty(t, idx.Retrieve(context.Background(), "query", 1, 5))
}

func TestRetrieveDefaultLimit(t *testing.T) {
	var gotLimit int
	engine := &mockEngine{
		searchFunc: func(ctx context.Context, term string, limit int) ([]driven.SearchHit, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	idx := NewIndexer(engine)

	idx.Retrieve(context.Background(), "query", 1, 0)
	assert.Equal(t, DefaultRetrieveLimit, gotLimit)
}
