package pdf

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

// minimalPDF builds a one-page PDF with the given text using the simplest
// possible object layout.
func minimalPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	var sb strings.Builder
	var offsets []int

	write := func(s string) {
		sb.WriteString(s)
	}
	object := func(s string) {
		offsets = append(offsets, sb.Len())
		write(s)
	}

	write("%PDF-1.4\n")
	object("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	object("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	object("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")
	object(fmt.Sprintf("4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(content), content))
	object("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xrefPos := sb.Len()
	write(fmt.Sprintf("xref\n0 %d\n", len(offsets)+1))
	write("0000000000 65535 f \n")
	for _, off := range offsets {
		write(fmt.Sprintf("%010d 00000 n \n", off))
	}
	write(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefPos))

	return []byte(sb.String())
}

func TestExtractSinglePage(t *testing.T) {
	ext := NewExtractor()

	pages, err := ext.Extract(context.Background(), minimalPDF("Hello world"))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 0, pages[0].PageIndex)
	assert.Contains(t, pages[0].Text, "Hello world")
}

func TestExtractEmptyInput(t *testing.T) {
	ext := NewExtractor()
	_, err := ext.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractGarbageInput(t *testing.T) {
	ext := NewExtractor()
	_, err := ext.Extract(context.Background(), []byte("this is not a pdf at all"))
	assert.Error(t, err)
}

func TestExtractTruncatedPDF(t *testing.T) {
	ext := NewExtractor()
	data := minimalPDF("Hello world")
	_, err := ext.Extract(context.Background(), data[:len(data)/3])
	assert.Error(t, err, "a truncated file must error rather than panic")
}

func TestExtractCancelledContext(t *testing.T) {
	ext := NewExtractor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ext.Extract(ctx, minimalPDF("Hello world"))
	assert.ErrorIs(t, err, context.Canceled)
}
