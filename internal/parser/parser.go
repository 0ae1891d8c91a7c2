// Package parser extracts plain text from uploaded resume documents.
package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrNoText means the document yielded no usable text.
	ErrNoText = errors.New("document contains no extractable text")
	// ErrUnsupported means the file type has no parser.
	ErrUnsupported = errors.New("unsupported file type")
)

// SupportedExtensions lists the resume file types this service accepts.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Document is the extraction result: the concatenated, whitespace-normalized
// full text plus the number of non-empty pages it came from.
type Document struct {
	Text  string
	Pages int
}

// Options tunes extraction behavior.
type Options struct {
	// PdftotextFallback shells out to pdftotext when the Go PDF library fails.
	PdftotextFallback bool
}

// Extract dispatches on the file extension and returns the document text.
// Page texts are labelled "[PAGE n]" and joined with blank lines, matching
// the layout the chunker and prompts expect.
func Extract(r io.Reader, filename string, opts Options) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		doc *Document
		err error
	)
	switch ext {
	case ".pdf":
		doc, err = extractPDF(r, opts.PdftotextFallback)
	case ".docx":
		doc, err = extractDOCX(r)
	case ".md", ".markdown":
		doc, err = extractMarkdown(r)
	case ".txt":
		doc, err = extractPlain(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, err
	}

	doc.Text = strings.TrimSpace(doc.Text)
	if doc.Text == "" {
		return nil, ErrNoText
	}
	return doc, nil
}

// joinPages labels each non-empty page and joins them with blank lines.
func joinPages(pages []string) *Document {
	var labelled []string
	for i, p := range pages {
		p = cleanText(p)
		if p == "" {
			continue
		}
		labelled = append(labelled, fmt.Sprintf("[PAGE %d]\n%s", i+1, p))
	}
	return &Document{Text: strings.Join(labelled, "\n\n"), Pages: len(labelled)}
}

// cleanText strips NUL bytes, normalizes line endings and trims the edges.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\x00", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}
