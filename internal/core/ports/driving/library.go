package driving

import (
	"context"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

// LibraryService manages the document library: import, open, list, delete,
// and session-state updates.
type LibraryService interface {
	// Import stores a new document and returns it with its assigned ID.
	Import(ctx context.Context, name string, data []byte) (*domain.Document, error)

	// Open loads a document, resets an abandoned learning state, extracts
	// and indexes its text, and returns the document with its chunks.
	// A document whose pages carry no extractable text opens with no
	// chunks rather than failing.
	Open(ctx context.Context, id int64) (*domain.Document, []domain.Chunk, error)

	// List returns all documents, most recently read first.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document and everything keyed by it.
	Delete(ctx context.Context, id int64) error

	// SetPage persists the reading position.
	SetPage(ctx context.Context, id int64, page int) error

	// SetPanels persists panel visibility so the workspace reopens
	// consistently.
	SetPanels(ctx context.Context, id int64, notesOpen, chatOpen bool) error

	// ResetDiscovery moves a failed document back to idle so a new
	// discovery run becomes eligible.
	ResetDiscovery(ctx context.Context, id int64) error
}
