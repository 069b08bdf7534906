package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTurnInFlight indicates a conversation turn is already running for
	// the document. Submissions are guarded, not queued: callers treat this
	// as a no-op.
	ErrTurnInFlight = errors.New("turn already in flight")

	// ErrModelNotReady indicates the generation service is not loaded yet.
	// Guarded submissions are ignored rather than surfaced as failures.
	ErrModelNotReady = errors.New("model not ready")

	// ErrLLMUnavailable indicates no generation service is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrSearchUnavailable indicates the full-text index is not configured.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrDiscoveryRunning indicates a repair-discovery run is already in
	// flight for the document. At most one runs at a time.
	ErrDiscoveryRunning = errors.New("discovery already running")

	// ErrNoExtractableText indicates a document produced no text pages.
	ErrNoExtractableText = errors.New("no extractable text")
)
