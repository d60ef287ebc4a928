// Package processor extracts plain text from uploaded PDF documents.
package processor

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NoTextFound is returned as content when a PDF yields no extractable text.
// It still flows through the pipeline, which then degrades to general research.
const NoTextFound = "No text found in document"

var (
	spaceRe   = regexp.MustCompile(`[ \t]+`)
	paraSepRe = regexp.MustCompile(`\n\s*\n+`)
)

// PDFProcessor extracts and normalizes text from PDF files.
type PDFProcessor struct{}

// New creates a PDF processor.
func New() *PDFProcessor {
	return &PDFProcessor{}
}

// ExtractText extracts plain text from a PDF file on disk.
func (p *PDFProcessor) ExtractText(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	return p.readText(r)
}

// ExtractFromBytes extracts plain text from in-memory PDF data.
func (p *PDFProcessor) ExtractFromBytes(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF data: %w", err)
	}

	return p.readText(r)
}

func (p *PDFProcessor) readText(r *pdf.Reader) (string, error) {
	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract plain text: %w", err)
	}
	if _, err := buf.ReadFrom(b); err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}

	text := Normalize(buf.String())
	if text == "" {
		return NoTextFound, nil
	}
	return text, nil
}

// Normalize collapses runs of spaces and blank lines so the chunker sees
// consistent paragraph boundaries.
func Normalize(text string) string {
	text = spaceRe.ReplaceAllString(text, " ")
	text = paraSepRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
