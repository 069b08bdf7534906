// Package memory provides in-memory implementations of the storage ports,
// used in tests and anywhere persistence is not required.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	nextID    int64
	documents map[int64]domain.Document
	messages  map[int64][]domain.StoredMessage
	notes     map[int64][]domain.Note
	bookmarks map[int64][]domain.Bookmark
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		nextID:    1,
		documents: make(map[int64]domain.Document),
		messages:  make(map[int64][]domain.StoredMessage),
		notes:     make(map[int64][]domain.Note),
		bookmarks: make(map[int64][]domain.Bookmark),
	}
}

// SaveDocument stores a new document and assigns its ID.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.ID = s.nextID
	s.nextID++
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id int64) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents ordered by last read, newest first,
// without content bytes.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		doc.Content = nil
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].LastRead.After(docs[j].LastRead)
	})
	return docs, nil
}

// UpdateDocument applies a partial update.
func (s *DocumentStore) UpdateDocument(_ context.Context, id int64, fields domain.DocumentFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if fields.CurrentPage != nil {
		doc.CurrentPage = *fields.CurrentPage
	}
	if fields.LastRead != nil {
		doc.LastRead = *fields.LastRead
	}
	if fields.RepairMap != nil {
		doc.RepairMap = fields.RepairMap
	}
	if fields.DiscoveryStatus != nil {
		if !fields.DiscoveryStatus.Valid() {
			return domain.ErrInvalidInput
		}
		doc.DiscoveryStatus = *fields.DiscoveryStatus
	}
	if fields.NotesOpen != nil {
		doc.NotesOpen = *fields.NotesOpen
	}
	if fields.ChatOpen != nil {
		doc.ChatOpen = *fields.ChatOpen
	}
	s.documents[id] = doc
	return nil
}

// DeleteDocument removes a document and everything keyed by it.
func (s *DocumentStore) DeleteDocument(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.messages, id)
	delete(s.notes, id)
	delete(s.bookmarks, id)
	return nil
}

// SaveMessage appends a conversation turn.
func (s *DocumentStore) SaveMessage(_ context.Context, msg *domain.StoredMessage) error {
	if msg == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = int64(len(s.messages[msg.DocumentID]) + 1)
	s.messages[msg.DocumentID] = append(s.messages[msg.DocumentID], *msg)
	return nil
}

// GetMessages returns a document's transcript in insertion order.
func (s *DocumentStore) GetMessages(_ context.Context, documentID int64) ([]domain.StoredMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]domain.StoredMessage, len(s.messages[documentID]))
	copy(msgs, s.messages[documentID])
	return msgs, nil
}

// SaveNote stores an annotation.
func (s *DocumentStore) SaveNote(_ context.Context, note *domain.Note) error {
	if note == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	note.ID = int64(len(s.notes[note.DocumentID]) + 1)
	s.notes[note.DocumentID] = append(s.notes[note.DocumentID], *note)
	return nil
}

// GetNotes returns a document's notes in insertion order.
func (s *DocumentStore) GetNotes(_ context.Context, documentID int64) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes := make([]domain.Note, len(s.notes[documentID]))
	copy(notes, s.notes[documentID])
	return notes, nil
}

// SaveBookmark stores a page bookmark.
func (s *DocumentStore) SaveBookmark(_ context.Context, bm *domain.Bookmark) error {
	if bm == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bm.ID = int64(len(s.bookmarks[bm.DocumentID]) + 1)
	s.bookmarks[bm.DocumentID] = append(s.bookmarks[bm.DocumentID], *bm)
	return nil
}

// GetBookmarks returns a document's bookmarks ordered by page.
func (s *DocumentStore) GetBookmarks(_ context.Context, documentID int64) ([]domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bms := make([]domain.Bookmark, len(s.bookmarks[documentID]))
	copy(bms, s.bookmarks[documentID])
	sort.Slice(bms, func(i, j int) bool { return bms[i].PageIndex < bms[j].PageIndex })
	return bms, nil
}

// Close releases resources.
func (s *DocumentStore) Close() error {
	return nil
}
