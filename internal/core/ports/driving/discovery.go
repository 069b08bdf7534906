package driving

import (
	"context"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

// DiscoveryEvent reports the outcome of a repair-discovery run. Events are
// delivered on the service's Events channel so the CLI and TUI can both
// observe completion without coupling the workflow to either.
type DiscoveryEvent struct {
	// DocumentID identifies the document the run belonged to.
	DocumentID int64

	// Status is the terminal state: complete or failed.
	Status domain.DiscoveryStatus

	// RulesLearned is the size of the persisted map on completion.
	RulesLearned int

	// Err is the failure cause when Status is failed.
	Err error
}

// DiscoveryService runs the background repair-map learning workflow:
// best-effort, one-shot per document, fully decoupled from question
// answering.
type DiscoveryService interface {
	// Start launches a discovery run for the document in the background.
	// It returns domain.ErrDiscoveryRunning if a run is already in flight
	// for this document, and nil once the run has been accepted.
	Start(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// Running reports whether a run is in flight for the document.
	Running(documentID int64) bool

	// Events delivers terminal events for accepted runs.
	Events() <-chan DiscoveryEvent
}
