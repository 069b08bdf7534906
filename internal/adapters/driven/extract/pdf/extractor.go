// Package pdf provides page-level text extraction from raw PDF bytes.
package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor extracts plain text from PDF documents.
type Extractor struct{}

// NewExtractor creates a PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns one PageText per page that carries extractable text.
// Pages with no text, and pages that fail individually, are omitted; the
// parser library panics on some malformed inputs, which is recovered and
// reported as an error.
func (e *Extractor) Extract(ctx context.Context, data []byte) (pages []driven.PageText, err error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("parsing pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not spoil the rest.
			continue
		}
		if text == "" {
			continue
		}
		pages = append(pages, driven.PageText{
			PageIndex: i - 1,
			Text:      text,
		})
	}
	return pages, nil
}
