package driven

import (
	"context"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

// LLMService is the on-device generation service. Implementations run a
// local model (e.g. Ollama); the orchestrator treats it as an opaque
// streaming completion collaborator.
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the full reply.
	// Used for short internal calls (keyword extraction, repair
	// escalation) that are never streamed to the user.
	Chat(ctx context.Context, messages []domain.Message, opts ChatOptions) (string, error)

	// ChatStream conducts a conversation in streaming mode. Deltas arrive
	// on the first channel strictly in generation order; the channel is
	// closed when the sequence ends. At most one error is sent on the
	// second channel, after which both are closed. The sequence is finite
	// and not restartable.
	ChatStream(ctx context.Context, messages []domain.Message, opts ChatOptions) (<-chan string, <-chan error)

	// Ready reports whether the underlying model is loaded and reachable.
	Ready(ctx context.Context) error

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ChatOptions configures generation behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
