package driven

import "context"

// WebSearcher performs a bounded-time external search request and returns
// raw text. It is intentionally dumb and stateless: one request, a hard
// timeout, a truncated body. Errors exist for caller logging only; the
// orchestrator treats every failure as "no context from that source".
type WebSearcher interface {
	// Fetch returns opaque context text for a query, truncated to a
	// bounded length.
	Fetch(ctx context.Context, query string) (string, error)

	// Enabled reports whether the searcher is usable (credential present).
	Enabled() bool
}
