package driving

import (
	"context"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

// AskOptions configures one conversation turn.
type AskOptions struct {
	// UseDocContext retrieves snippets from the document index.
	UseDocContext bool

	// UseWebSearch augments the prompt with live web results.
	UseWebSearch bool

	// OnDelta, when set, is invoked once per streamed increment with the
	// assistant message accumulated so far. Calls are strictly ordered.
	OnDelta func(assistantSoFar string)
}

// AskService answers questions about the active document. One turn runs at
// a time per document session; a submission while a turn is in flight is
// rejected with domain.ErrTurnInFlight, which callers treat as a no-op.
type AskService interface {
	// Ask runs a full turn: keyword extraction, parallel retrieval,
	// context assembly, and the streamed synthesis call. It returns the
	// final assistant message.
	Ask(ctx context.Context, doc *domain.Document, question string, opts AskOptions) (string, error)

	// History returns the in-memory conversation window for the active
	// document session.
	History() []domain.Message

	// Reset clears the in-memory conversation, e.g. on document switch.
	Reset()

	// Streaming reports whether a turn is currently in flight.
	Streaming() bool
}
