package driven

import (
	"context"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

// DocumentStore persists documents and the records keyed by them.
// Backed by SQLite.
type DocumentStore interface {
	// SaveDocument stores a new document and assigns its ID.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id int64) (*domain.Document, error)

	// ListDocuments returns all documents ordered by last read, newest
	// first. Content bytes are not loaded.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// UpdateDocument applies a partial update. Nil fields are unchanged;
	// a non-nil RepairMap replaces the stored map wholesale.
	UpdateDocument(ctx context.Context, id int64, fields domain.DocumentFields) error

	// DeleteDocument removes a document and cascades to its messages,
	// notes, and bookmarks.
	DeleteDocument(ctx context.Context, id int64) error

	// SaveMessage appends a conversation turn to the durable transcript.
	SaveMessage(ctx context.Context, msg *domain.StoredMessage) error

	// GetMessages returns the durable transcript for a document in
	// chronological order.
	GetMessages(ctx context.Context, documentID int64) ([]domain.StoredMessage, error)

	// SaveNote stores an annotation for a document.
	SaveNote(ctx context.Context, note *domain.Note) error

	// GetNotes returns a document's notes in creation order.
	GetNotes(ctx context.Context, documentID int64) ([]domain.Note, error)

	// SaveBookmark stores a page bookmark for a document.
	SaveBookmark(ctx context.Context, bm *domain.Bookmark) error

	// GetBookmarks returns a document's bookmarks ordered by page.
	GetBookmarks(ctx context.Context, documentID int64) ([]domain.Bookmark, error)

	// Close releases resources.
	Close() error
}
