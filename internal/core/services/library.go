package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nexus-cli/internal/logger"
)

// Library manages the document collection and per-document session state.
type Library struct {
	store     driven.DocumentStore
	extractor driven.TextExtractor
	indexer   *Indexer
}

var _ driving.LibraryService = (*Library)(nil)

// NewLibrary creates the library service.
func NewLibrary(store driven.DocumentStore, extractor driven.TextExtractor, indexer *Indexer) *Library {
	return &Library{
		store:     store,
		extractor: extractor,
		indexer:   indexer,
	}
}

// Import stores a new document and returns it with its assigned ID.
func (l *Library) Import(ctx context.Context, name string, data []byte) (*domain.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	doc := &domain.Document{
		Name:            name,
		Content:         data,
		Size:            int64(len(data)),
		LastRead:        now,
		CreatedAt:       now,
		DiscoveryStatus: domain.DiscoveryIdle,
	}
	if err := l.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	logger.Info("Imported %q (%d bytes) as document %d", name, doc.Size, doc.ID)
	return doc, nil
}

// Open loads a document, extracts and indexes its text, and returns the
// document with its chunks. A document stuck in the learning state from an
// interrupted run is reset to idle first. Extraction and indexing are
// best-effort: a document whose pages carry no extractable text opens with
// no chunks rather than failing.
func (l *Library) Open(ctx context.Context, id int64) (*domain.Document, []domain.Chunk, error) {
	doc, err := l.store.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("loading document %d: %w", id, err)
	}

	if doc.DiscoveryStatus == domain.DiscoveryLearning {
		logger.Warn("Document %d was left in learning state, resetting to idle", id)
		idle := domain.DiscoveryIdle
		if err := l.store.UpdateDocument(ctx, id, domain.DocumentFields{DiscoveryStatus: &idle}); err != nil {
			return nil, nil, fmt.Errorf("recovering discovery status: %w", err)
		}
		doc.DiscoveryStatus = domain.DiscoveryIdle
	}

	chunks := l.extractChunks(ctx, doc)
	if l.indexer != nil && len(chunks) > 0 {
		if err := l.indexer.IndexDocument(ctx, doc.ID, chunks); err != nil {
			logger.Warn("Indexing document %d: %v", doc.ID, err)
		}
	}

	now := time.Now()
	if err := l.store.UpdateDocument(ctx, id, domain.DocumentFields{LastRead: &now}); err != nil {
		logger.Warn("Updating last read: %v", err)
	}
	doc.LastRead = now

	return doc, chunks, nil
}

// List returns all documents, most recently read first.
func (l *Library) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := l.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document. The store cascades to messages, notes, and
// bookmarks.
func (l *Library) Delete(ctx context.Context, id int64) error {
	if err := l.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("deleting document %d: %w", id, err)
	}
	logger.Info("Deleted document %d", id)
	return nil
}

// SetPage persists the reading position.
func (l *Library) SetPage(ctx context.Context, id int64, page int) error {
	if page < 0 {
		return domain.ErrInvalidInput
	}
	if err := l.store.UpdateDocument(ctx, id, domain.DocumentFields{CurrentPage: &page}); err != nil {
		return fmt.Errorf("updating page: %w", err)
	}
	return nil
}

// SetPanels persists panel visibility.
func (l *Library) SetPanels(ctx context.Context, id int64, notesOpen, chatOpen bool) error {
	fields := domain.DocumentFields{NotesOpen: &notesOpen, ChatOpen: &chatOpen}
	if err := l.store.UpdateDocument(ctx, id, fields); err != nil {
		return fmt.Errorf("updating panels: %w", err)
	}
	return nil
}

// ResetDiscovery moves a failed document back to idle so a new discovery
// run becomes eligible. Only a failed document can be reset.
func (l *Library) ResetDiscovery(ctx context.Context, id int64) error {
	doc, err := l.store.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("loading document %d: %w", id, err)
	}
	if doc.DiscoveryStatus != domain.DiscoveryFailed {
		return fmt.Errorf("document %d is %s: %w", id, doc.DiscoveryStatus, domain.ErrInvalidInput)
	}
	idle := domain.DiscoveryIdle
	if err := l.store.UpdateDocument(ctx, id, domain.DocumentFields{DiscoveryStatus: &idle}); err != nil {
		return fmt.Errorf("resetting discovery status: %w", err)
	}
	return nil
}

// extractChunks pulls page text out of the raw content. Every page with
// extractable text becomes one chunk; extraction failure degrades to an
// empty result.
func (l *Library) extractChunks(ctx context.Context, doc *domain.Document) []domain.Chunk {
	if l.extractor == nil {
		return nil
	}
	pages, err := l.extractor.Extract(ctx, doc.Content)
	if err != nil {
		logger.Warn("Extracting text from document %d: %v", doc.ID, err)
		return nil
	}

	chunks := make([]domain.Chunk, 0, len(pages))
	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			PageIndex:  p.PageIndex,
			Text:       text,
		})
	}
	logger.Debug("Extracted %d text pages from document %d", len(chunks), doc.ID)
	return chunks
}
