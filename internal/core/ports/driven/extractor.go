package driven

import "context"

// PageText is one page's extracted text. Pages with no extractable text
// are omitted from extraction results.
type PageText struct {
	// PageIndex is the zero-based page number.
	PageIndex int

	// Text is the page's plain text.
	Text string
}

// TextExtractor pulls page-level text out of a raw document.
type TextExtractor interface {
	// Extract returns one PageText per page with extractable text.
	Extract(ctx context.Context, data []byte) ([]PageText, error)
}
